package han

// mixSegment runs MP first, then hands every maximal run of single-rune
// words the dictionary did not claim to the HMM. Single runes the user
// dictionary declares stand as-is.
type mixSegment struct {
	dict *Dictionary
	mp   mpSegment
	hmm  hmmSegment
}

func (x mixSegment) cutRange(rs RuneArray, begin, end int, res *[]WordRange, useHMM bool, maxWordLen int, ctx *CutContext) {
	if !useHMM {
		x.mp.cutRange(rs, begin, end, res, maxWordLen, ctx)
		return
	}

	words := ctx.mixWords[:0]
	x.mp.cutRange(rs, begin, end, &words, maxWordLen, ctx)
	ctx.mixWords = words

	for i := 0; i < len(words); i++ {
		w := words[i]
		if w.Left != w.Right || x.dict.isUserSingle(rs[w.Left].Rune) {
			*res = append(*res, w)
			continue
		}
		j := i
		for j < len(words) && words[j].Left == words[j].Right && !x.dict.isUserSingle(rs[words[j].Left].Rune) {
			j++
		}
		x.hmm.cutRange(rs, w.Left, words[j-1].Left+1, res, ctx)
		i = j - 1
	}
}
