package han

import (
	"unicode"

	"go.uber.org/zap"
)

// Mode selects the segmentation strategy.
type Mode int

const (
	ModeMix Mode = iota
	ModeMP
	ModeHMM
	ModeQuery
)

// CutOptions tunes one Cut call. A zero MaxWordLen means MaxWordLength;
// a nil Context uses a private one for the call.
type CutOptions struct {
	Mode       Mode
	UseHMM     bool
	MaxWordLen int
	Context    *CutContext
}

// DefaultCutOptions is Mix with HMM recovery enabled.
func DefaultCutOptions() CutOptions {
	return CutOptions{Mode: ModeMix, UseHMM: true, MaxWordLen: MaxWordLength}
}

// CutContext holds per-call scratch buffers so repeated cuts reuse them
// instead of allocating new ones; the returned []Word is still
// allocated per call. A context must not be shared across concurrent
// calls.
type CutContext struct {
	runes      RuneArray
	wrs        []WordRange
	mixWords   []WordRange
	queryWords []WordRange
	dag        [][]dagCand
	best       []float64
	next       []int
	weights    []float64
	path       []int
	status     []int
}

// NewCutContext returns an empty context; buffers grow on first use.
func NewCutContext() *CutContext {
	return &CutContext{}
}

func (c *CutContext) dagBuf(n int) [][]dagCand {
	if cap(c.dag) < n {
		grown := make([][]dagCand, n)
		copy(grown, c.dag)
		c.dag = grown
	}
	c.dag = c.dag[:n]
	return c.dag
}

func (c *CutContext) bestBuf(n int) []float64 {
	if cap(c.best) < n {
		c.best = make([]float64, n)
	}
	return c.best[:n]
}

func (c *CutContext) nextBuf(n int) []int {
	if cap(c.next) < n {
		c.next = make([]int, n)
	}
	return c.next[:n]
}

func (c *CutContext) weightBuf(n int) []float64 {
	if cap(c.weights) < n {
		c.weights = make([]float64, n)
	}
	return c.weights[:n]
}

func (c *CutContext) pathBuf(n int) []int {
	if cap(c.path) < n {
		c.path = make([]int, n)
	}
	return c.path[:n]
}

func (c *CutContext) statusBuf(n int) []int {
	if cap(c.status) < n {
		c.status = make([]int, n)
	}
	return c.status[:n]
}

// Options configures segmenter construction.
type Options struct {
	DictPath      string
	HMMModelPath  string
	UserDictPaths string // '|' or ';' separated
	UserWeight    WeightOption
	Symbols       *unicode.RangeTable
	Logger        *zap.Logger
}

// Segmenter is the composite segmentation service. It owns the
// dictionary and HMM model and must outlive every cut it serves.
// Concurrent Cut calls are safe; user-word mutation serializes against
// them through the dictionary lock.
type Segmenter struct {
	dict    *Dictionary
	model   *HMMModel
	symbols *unicode.RangeTable
	logger  *zap.Logger

	mp    mpSegment
	hmm   hmmSegment
	mix   mixSegment
	query querySegment
}

// New loads the dictionary and HMM model from opts and builds a
// segmenter.
func New(opts Options) (*Segmenter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dict := NewDictionary(logger)
	if err := dict.Load(opts.DictPath, opts.UserDictPaths, opts.UserWeight); err != nil {
		return nil, err
	}
	model, err := LoadHMMModel(opts.HMMModelPath, logger)
	if err != nil {
		return nil, err
	}
	return NewFromParts(dict, model, opts.Symbols, logger), nil
}

// NewFromParts builds a segmenter over an already-constructed
// dictionary and model. The segmenter borrows both.
func NewFromParts(dict *Dictionary, model *HMMModel, symbols *unicode.RangeTable, logger *zap.Logger) *Segmenter {
	if symbols == nil {
		symbols = DefaultSymbols
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Segmenter{
		dict:    dict,
		model:   model,
		symbols: symbols,
		logger:  logger.Named("segmenter"),
	}
	s.mp = mpSegment{dict: dict}
	s.hmm = hmmSegment{model: model}
	s.mix = mixSegment{dict: dict, mp: s.mp, hmm: s.hmm}
	s.query = querySegment{dict: dict, mix: s.mix}
	return s
}

// Dictionary returns the segmenter's dictionary.
func (s *Segmenter) Dictionary() *Dictionary {
	return s.dict
}

// InsertUserWord adds a word to the live user dictionary.
func (s *Segmenter) InsertUserWord(word string, freq float64, tag string) bool {
	return s.dict.InsertUserWord(word, freq, tag)
}

// DeleteUserWord removes a user word.
func (s *Segmenter) DeleteUserWord(word, tag string) bool {
	return s.dict.DeleteUserWord(word, tag)
}

// Cut segments a sentence. Malformed UTF-8 yields an empty result and
// an error log; no partial output is exposed.
func (s *Segmenter) Cut(sentence string, opts CutOptions) []Word {
	if opts.MaxWordLen <= 0 {
		opts.MaxWordLen = MaxWordLength
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = NewCutContext()
	}

	runes, err := appendRunes(ctx.runes[:0], sentence)
	ctx.runes = runes
	if err != nil {
		s.logger.Error("decode failed", zap.Error(err))
		return nil
	}

	s.dict.mu.RLock()
	defer s.dict.mu.RUnlock()

	wrs := ctx.wrs[:0]
	pf := newPreFilter(s.symbols, runes)
	for pf.hasNext() {
		begin, end := pf.next()
		switch opts.Mode {
		case ModeMP:
			s.mp.cutRange(runes, begin, end, &wrs, opts.MaxWordLen, ctx)
		case ModeHMM:
			s.hmm.cutRange(runes, begin, end, &wrs, ctx)
		case ModeQuery:
			s.query.cutRange(runes, begin, end, &wrs, opts.UseHMM, ctx)
		default:
			s.mix.cutRange(runes, begin, end, &wrs, opts.UseHMM, opts.MaxWordLen, ctx)
		}
	}
	ctx.wrs = wrs
	return wordsFromRanges(sentence, runes, wrs)
}
