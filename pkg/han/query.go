package han

// querySegment augments Mix output for search indexing: every in-trie
// 2-rune and 3-rune substring of a longer word is emitted before the
// word itself, so output ranges overlap on purpose.
type querySegment struct {
	dict *Dictionary
	mix  mixSegment
}

func (q querySegment) cutRange(rs RuneArray, begin, end int, res *[]WordRange, useHMM bool, ctx *CutContext) {
	words := ctx.queryWords[:0]
	q.mix.cutRange(rs, begin, end, &words, useHMM, MaxWordLength, ctx)
	ctx.queryWords = words

	for _, w := range words {
		if w.Length() > 2 {
			for i := 0; i+1 < w.Length(); i++ {
				if q.dict.trie.findRange(rs, w.Left+i, w.Left+i+2) != nil {
					*res = append(*res, WordRange{Left: w.Left + i, Right: w.Left + i + 1})
				}
			}
		}
		if w.Length() > 3 {
			for i := 0; i+2 < w.Length(); i++ {
				if q.dict.trie.findRange(rs, w.Left+i, w.Left+i+3) != nil {
					*res = append(*res, WordRange{Left: w.Left + i, Right: w.Left + i + 2})
				}
			}
		}
		*res = append(*res, w)
	}
}
