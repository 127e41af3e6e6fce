package han

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Character positions inside a word: Begin, End, Middle, Single.
const (
	stateB = 0
	stateE = 1
	stateM = 2
	stateS = 3

	statusCount = 4
)

// HMMModel holds the Viterbi parameters for B/E/M/S character tagging.
// All probabilities are natural logarithms; transitions that never
// occur carry minDouble.
type HMMModel struct {
	StartProb [statusCount]float64
	TransProb [statusCount][statusCount]float64
	EmitProb  [statusCount]map[rune]float64
}

// NewHMMModel builds a model from pre-parsed matrices.
func NewHMMModel(start [statusCount]float64, trans [statusCount][statusCount]float64, emit [statusCount]map[rune]float64) *HMMModel {
	m := &HMMModel{StartProb: start, TransProb: trans, EmitProb: emit}
	for s := 0; s < statusCount; s++ {
		if m.EmitProb[s] == nil {
			m.EmitProb[s] = make(map[rune]float64)
		}
	}
	return m
}

func (m *HMMModel) emit(state int, r rune) float64 {
	if p, ok := m.EmitProb[state][r]; ok {
		return p
	}
	return minDouble
}

// LoadHMMModel reads the model file: comment lines start with '#';
// then one line of 4 start probabilities, four lines of transition
// rows, and four emission lines of comma-separated `rune:logp` pairs,
// in B/E/M/S order.
func LoadHMMModel(path string, logger *zap.Logger) (*HMMModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hmm model not found at %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) < 1+statusCount+statusCount {
		return nil, fmt.Errorf("%w: hmm model %s has %d data lines", ErrFormat, path, len(lines))
	}

	var m HMMModel
	if err := parseProbRow(lines[0], m.StartProb[:]); err != nil {
		return nil, fmt.Errorf("hmm start line: %w", err)
	}
	for s := 0; s < statusCount; s++ {
		if err := parseProbRow(lines[1+s], m.TransProb[s][:]); err != nil {
			return nil, fmt.Errorf("hmm trans line %d: %w", s, err)
		}
	}
	for s := 0; s < statusCount; s++ {
		m.EmitProb[s] = make(map[rune]float64)
		if err := parseEmitLine(lines[1+statusCount+s], m.EmitProb[s], logger); err != nil {
			return nil, fmt.Errorf("hmm emit line %d: %w", s, err)
		}
	}
	return &m, nil
}

func parseProbRow(line string, dst []float64) error {
	parts := strings.Fields(line)
	if len(parts) != len(dst) {
		return fmt.Errorf("%w: want %d columns, got %d", ErrFormat, len(dst), len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrFormat, p)
		}
		dst[i] = v
	}
	return nil
}

func parseEmitLine(line string, dst map[rune]float64, logger *zap.Logger) error {
	for _, tok := range strings.Split(line, ",") {
		i := strings.LastIndex(tok, ":")
		if i <= 0 {
			logger.Error("bad emit token", zap.String("token", tok))
			continue
		}
		key, err := decodeKey(tok[:i])
		if err != nil || len(key) != 1 {
			logger.Error("bad emit rune", zap.String("token", tok))
			continue
		}
		p, err := strconv.ParseFloat(tok[i+1:], 64)
		if err != nil {
			logger.Error("bad emit prob", zap.String("token", tok))
			continue
		}
		dst[key[0]] = p
	}
	if len(dst) == 0 {
		return fmt.Errorf("%w: empty emit line", ErrFormat)
	}
	return nil
}

// hmmSegment recovers words over runs the dictionary does not cover by
// Viterbi-tagging each rune with B/E/M/S. ASCII runs pass through as
// single words.
type hmmSegment struct {
	model *HMMModel
}

func (h hmmSegment) cutRange(rs RuneArray, begin, end int, res *[]WordRange, ctx *CutContext) {
	for i := begin; i < end; {
		if isASCII(rs[i].Rune) {
			j := i
			for j < end && isASCII(rs[j].Rune) {
				j++
			}
			*res = append(*res, WordRange{Left: i, Right: j - 1})
			i = j
			continue
		}
		j := i
		for j < end && !isASCII(rs[j].Rune) {
			j++
		}
		h.viterbiCut(rs, i, j, res, ctx)
		i = j
	}
}

// viterbiCut tags runes [begin, end) and emits a word range at every E
// or S. A word opens at B or S; the legal-transition table guarantees
// B is followed by M* then exactly one E.
func (h hmmSegment) viterbiCut(rs RuneArray, begin, end int, res *[]WordRange, ctx *CutContext) {
	n := end - begin
	if n <= 0 {
		return
	}
	status := h.viterbi(rs, begin, end, ctx)
	left := 0
	for t, st := range status {
		if st == stateE || st == stateS {
			*res = append(*res, WordRange{Left: begin + left, Right: begin + t})
			left = t + 1
		}
	}
	if left < n {
		*res = append(*res, WordRange{Left: begin + left, Right: end - 1})
	}
}

// viterbi returns the most probable B/E/M/S sequence for runes
// [begin, end). The final state is chosen among {E, S} only.
func (h hmmSegment) viterbi(rs RuneArray, begin, end int, ctx *CutContext) []int {
	m := h.model
	n := end - begin
	weights := ctx.weightBuf(n * statusCount)
	path := ctx.pathBuf(n * statusCount)

	for s := 0; s < statusCount; s++ {
		weights[s] = m.StartProb[s] + m.emit(s, rs[begin].Rune)
	}
	for t := 1; t < n; t++ {
		r := rs[begin+t].Rune
		for s := 0; s < statusCount; s++ {
			bestPrev := 0
			bw := weights[(t-1)*statusCount] + m.TransProb[0][s]
			for p := 1; p < statusCount; p++ {
				if w := weights[(t-1)*statusCount+p] + m.TransProb[p][s]; w > bw {
					bw, bestPrev = w, p
				}
			}
			weights[t*statusCount+s] = bw + m.emit(s, r)
			path[t*statusCount+s] = bestPrev
		}
	}

	st := stateS
	if weights[(n-1)*statusCount+stateE] > weights[(n-1)*statusCount+stateS] {
		st = stateE
	}
	status := ctx.statusBuf(n)
	for t := n - 1; t >= 0; t-- {
		status[t] = st
		st = path[t*statusCount+st]
	}
	return status
}
