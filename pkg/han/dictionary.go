package han

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	minDouble = -3.14e100
	maxDouble = 3.14e100

	// MaxWordLength bounds DAG enumeration, in runes.
	MaxWordLength = 512
)

var (
	// ErrFormat marks a record that does not split into the required
	// columns or carries a non-positive frequency. LoadRecords and
	// LoadHMMModel return it and stop; the line-oriented file readers
	// instead skip a bad line with an error log and continue.
	ErrFormat = errors.New("bad record format")

	// ErrEmptyDict is returned when construction ends with no usable
	// entries.
	ErrEmptyDict = errors.New("empty dictionary")
)

// DictEntry is one dictionary word. Weight is ln(freq / freqSum) and is
// always <= 0.
type DictEntry struct {
	Word   []rune
	Weight float64
	Tag    string
}

// Record is one pre-parsed dictionary line.
type Record struct {
	Word string
	Freq float64
	Tag  string
}

// WeightOption selects the default weight given to user words that
// arrive without a frequency.
type WeightOption int

const (
	WeightMedian WeightOption = iota
	WeightMin
	WeightMax
)

// userBlockSize is the chunk size of the user-entry store. Blocks are
// never reallocated, so trie values pointing into them stay valid.
const userBlockSize = 64

type entryBlocks struct {
	blocks [][]DictEntry
}

func (b *entryBlocks) push(e DictEntry) *DictEntry {
	last := len(b.blocks) - 1
	if last < 0 || len(b.blocks[last]) == cap(b.blocks[last]) {
		b.blocks = append(b.blocks, make([]DictEntry, 0, userBlockSize))
		last++
	}
	b.blocks[last] = append(b.blocks[last], e)
	return &b.blocks[last][len(b.blocks[last])-1]
}

// Dictionary holds the static vocabulary, the live user overlay, and
// the trie over both. It is immutable after Load apart from
// InsertUserWord/DeleteUserWord, which serialize against readers
// through mu.
type Dictionary struct {
	mu   sync.RWMutex
	trie trie

	static []DictEntry
	user   entryBlocks

	freqSum      float64
	minWeight    float64
	medianWeight float64
	maxWeight    float64
	userWeight   float64

	singleRuneUser map[rune]struct{}

	logger *zap.Logger
}

// NewDictionary creates an empty dictionary. Call Load or LoadRecords
// before handing it to a segmenter.
func NewDictionary(logger *zap.Logger) *Dictionary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dictionary{
		singleRuneUser: make(map[rune]struct{}),
		logger:         logger.Named("dictionary"),
	}
}

// Load reads the static dictionary file and zero or more user
// dictionary files (paths separated by '|' or ';').
func (d *Dictionary) Load(dictPath, userDictPaths string, opt WeightOption) error {
	records, err := readDictFile(dictPath, d.logger)
	if err != nil {
		return err
	}
	var userRecords []Record
	for _, p := range splitPaths(userDictPaths) {
		rs, err := readUserDictFile(p, d.logger)
		if err != nil {
			return err
		}
		userRecords = append(userRecords, rs...)
	}
	return d.LoadRecords(records, userRecords, opt)
}

// LoadRecords builds the dictionary from pre-parsed records. Static
// records must carry positive frequencies; user records may omit the
// frequency (Freq <= 0) to receive the default user weight.
func (d *Dictionary) LoadRecords(static, user []Record, opt WeightOption) error {
	if len(static) == 0 {
		return ErrEmptyDict
	}

	entries := make([]DictEntry, 0, len(static)+len(user))
	var freqSum float64
	for _, rec := range static {
		if rec.Freq <= 0 {
			return fmt.Errorf("%w: %q freq %v", ErrFormat, rec.Word, rec.Freq)
		}
		key, err := decodeKey(rec.Word)
		if err != nil {
			return fmt.Errorf("decode %q: %w", rec.Word, err)
		}
		entries = append(entries, DictEntry{Word: key, Weight: rec.Freq, Tag: rec.Tag})
		freqSum += rec.Freq
	}
	if freqSum <= 0 {
		return fmt.Errorf("%w: freq sum %v", ErrEmptyDict, freqSum)
	}
	d.freqSum = freqSum
	for i := range entries {
		entries[i].Weight = math.Log(entries[i].Weight / freqSum)
	}
	d.setWeightStats(entries, opt)

	for _, rec := range user {
		key, err := decodeKey(rec.Word)
		if err != nil {
			d.logger.Error("skipping user word", zap.String("word", rec.Word), zap.Error(err))
			continue
		}
		weight := d.userWeight
		if rec.Freq > 0 {
			weight = math.Log(rec.Freq / freqSum)
		}
		entries = append(entries, DictEntry{Word: key, Weight: weight, Tag: rec.Tag})
		if len(key) == 1 {
			d.singleRuneUser[key[0]] = struct{}{}
		}
	}

	// Exact-size copy: the trie stores addresses into this slice, so it
	// must never grow again.
	d.static = make([]DictEntry, len(entries))
	copy(d.static, entries)
	for i := range d.static {
		d.trie.insert(d.static[i].Word, &d.static[i])
	}

	d.logger.Info("dictionary loaded",
		zap.String("entries", humanize.Comma(int64(len(d.static)))),
		zap.Float64("min_weight", d.minWeight),
		zap.Float64("median_weight", d.medianWeight),
		zap.Float64("max_weight", d.maxWeight))
	return nil
}

func (d *Dictionary) setWeightStats(entries []DictEntry, opt WeightOption) {
	weights := make([]float64, len(entries))
	for i := range entries {
		weights[i] = entries[i].Weight
	}
	sort.Float64s(weights)
	d.minWeight = weights[0]
	d.maxWeight = weights[len(weights)-1]
	d.medianWeight = weights[len(weights)/2]
	switch opt {
	case WeightMin:
		d.userWeight = d.minWeight
	case WeightMax:
		d.userWeight = d.maxWeight
	default:
		d.userWeight = d.medianWeight
	}
}

// InsertUserWord adds a word at runtime. freq <= 0 uses the default
// user weight. The entry is pushed onto the chunked user store so that
// addresses already referenced by the trie stay valid.
func (d *Dictionary) InsertUserWord(word string, freq float64, tag string) bool {
	key, err := decodeKey(word)
	if err != nil || len(key) == 0 {
		d.logger.Error("insert user word", zap.String("word", word), zap.Error(err))
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	weight := d.userWeight
	if freq > 0 {
		weight = math.Log(freq / d.freqSum)
	}
	entry := d.user.push(DictEntry{Word: key, Weight: weight, Tag: tag})
	d.trie.insert(key, entry)
	if len(key) == 1 {
		d.singleRuneUser[key[0]] = struct{}{}
	}
	return true
}

// DeleteUserWord unlinks the terminal entry for word. The trie path is
// left intact for longer words sharing the prefix.
func (d *Dictionary) DeleteUserWord(word, tag string) bool {
	key, err := decodeKey(word)
	if err != nil || len(key) == 0 {
		d.logger.Error("delete user word", zap.String("word", word), zap.Error(err))
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trie.remove(key)
}

// Find checks if a word is in the dictionary.
func (d *Dictionary) Find(word string) bool {
	key, err := decodeKey(word)
	if err != nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.trie.find(key) != nil
}

// MinWeight returns the minimum log-weight among static entries; the MP
// segmenter charges it to single-rune fallbacks.
func (d *Dictionary) MinWeight() float64 {
	return d.minWeight
}

func (d *Dictionary) isUserSingle(r rune) bool {
	_, ok := d.singleRuneUser[r]
	return ok
}

func splitPaths(paths string) []string {
	return strings.FieldsFunc(paths, func(r rune) bool {
		return r == '|' || r == ';'
	})
}

// readDictFile parses `<word> <freq> <tag>` lines. Malformed lines are
// skipped with an error log; loading continues.
func readDictFile(path string, logger *zap.Logger) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary not found at %s: %w", path, err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			logger.Error("bad dictionary line", zap.String("path", path), zap.Int("line", lineno))
			continue
		}
		freq, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || freq <= 0 {
			logger.Error("bad dictionary freq", zap.String("path", path), zap.Int("line", lineno), zap.String("freq", parts[1]))
			continue
		}
		records = append(records, Record{Word: parts[0], Freq: freq, Tag: parts[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// readUserDictFile parses user lines: `<word>`, `<word> <tag>`, or
// `<word> <freq> <tag>`. Empty lines are skipped.
func readUserDictFile(path string, logger *zap.Logger) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("user dictionary not found at %s: %w", path, err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		switch len(parts) {
		case 1:
			records = append(records, Record{Word: parts[0]})
		case 2:
			records = append(records, Record{Word: parts[0], Tag: parts[1]})
		case 3:
			freq, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				logger.Error("bad user dictionary freq", zap.String("path", path), zap.Int("line", lineno))
				continue
			}
			records = append(records, Record{Word: parts[0], Freq: freq, Tag: parts[2]})
		default:
			logger.Error("bad user dictionary line", zap.String("path", path), zap.Int("line", lineno))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
