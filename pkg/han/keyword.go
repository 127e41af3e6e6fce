package han

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Keyword is one extracted term with its TF·IDF weight and the byte
// offsets of every Mix-cut token equal to it. An occurrence inside a
// longer token is not counted.
type Keyword struct {
	Word    string
	Weight  float64
	Offsets []int
}

// KeywordExtractor ranks Mix-cut tokens by term frequency times inverse
// document frequency, minus stopwords and single runes.
type KeywordExtractor struct {
	seg        *Segmenter
	idf        map[string]float64
	idfAverage float64
	stopWords  map[string]struct{}
	logger     *zap.Logger
}

// NewKeywordExtractor loads the IDF and stopword files. The extractor
// borrows the segmenter.
func NewKeywordExtractor(seg *Segmenter, idfPath, stopWordPath string, logger *zap.Logger) (*KeywordExtractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("keyword")
	idf, avg, err := loadIDF(idfPath, logger)
	if err != nil {
		return nil, err
	}
	stop, err := loadStopWords(stopWordPath)
	if err != nil {
		return nil, err
	}
	return &KeywordExtractor{seg: seg, idf: idf, idfAverage: avg, stopWords: stop, logger: logger}, nil
}

// NewKeywordExtractorFromTables builds an extractor from in-memory
// tables; the mean of idf seeds the default for unseen terms.
func NewKeywordExtractorFromTables(seg *Segmenter, idf map[string]float64, stopWords []string) *KeywordExtractor {
	var sum float64
	for _, v := range idf {
		sum += v
	}
	avg := 0.0
	if len(idf) > 0 {
		avg = sum / float64(len(idf))
	}
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[w] = struct{}{}
	}
	return &KeywordExtractor{seg: seg, idf: idf, idfAverage: avg, stopWords: stop, logger: zap.NewNop()}
}

// Extract returns the topN keywords by weight, heaviest first.
func (k *KeywordExtractor) Extract(sentence string, topN int) []Keyword {
	words := k.seg.Cut(sentence, DefaultCutOptions())

	byWord := make(map[string]*Keyword)
	for _, w := range words {
		if w.RuneLen <= 1 {
			continue
		}
		if _, stopped := k.stopWords[w.Text]; stopped {
			continue
		}
		kw, ok := byWord[w.Text]
		if !ok {
			kw = &Keyword{Word: w.Text}
			byWord[w.Text] = kw
		}
		kw.Weight += 1.0
		kw.Offsets = append(kw.Offsets, w.ByteOffset)
	}

	keywords := make([]Keyword, 0, len(byWord))
	for _, kw := range byWord {
		idf, ok := k.idf[kw.Word]
		if !ok {
			idf = k.idfAverage
		}
		kw.Weight *= idf
		keywords = append(keywords, *kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight != keywords[j].Weight {
			return keywords[i].Weight > keywords[j].Weight
		}
		return keywords[i].Word < keywords[j].Word
	})
	if topN < len(keywords) {
		keywords = keywords[:topN]
	}
	return keywords
}

// loadIDF parses `<term> <idf>` lines; bad lines are skipped with an
// error log.
func loadIDF(path string, logger *zap.Logger) (map[string]float64, float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("idf file not found at %s: %w", path, err)
	}
	defer file.Close()

	idf := make(map[string]float64)
	var sum float64
	scanner := bufio.NewScanner(file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			logger.Error("bad idf line", zap.String("path", path), zap.Int("line", lineno))
			continue
		}
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			logger.Error("bad idf value", zap.String("path", path), zap.Int("line", lineno))
			continue
		}
		idf[parts[0]] = v
		sum += v
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	if len(idf) == 0 {
		return nil, 0, fmt.Errorf("%w: idf table %s", ErrEmptyDict, path)
	}
	return idf, sum / float64(len(idf)), nil
}

func loadStopWords(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stopword file not found at %s: %w", path, err)
	}
	defer file.Close()

	stop := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		stop[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(stop) == 0 {
		return nil, fmt.Errorf("%w: stopword list %s", ErrEmptyDict, path)
	}
	return stop, nil
}
