package han

// Tag cuts a sentence with Mix and attaches a part-of-speech tag to
// every word: the dictionary tag when the word resolves to an entry,
// otherwise a rune-class fallback so no word goes untagged.
func (s *Segmenter) Tag(sentence string) []TaggedWord {
	words := s.Cut(sentence, DefaultCutOptions())
	tagged := make([]TaggedWord, 0, len(words))
	for _, w := range words {
		tagged = append(tagged, TaggedWord{Word: w, Tag: s.LookupTag(w.Text)})
	}
	return tagged
}

// LookupTag returns the tag for one word, falling back to the OOV
// heuristic when the dictionary has no tag for it.
func (s *Segmenter) LookupTag(word string) string {
	key, err := decodeKey(word)
	if err != nil || len(key) == 0 {
		return "x"
	}
	s.dict.mu.RLock()
	entry := s.dict.trie.find(key)
	s.dict.mu.RUnlock()
	if entry != nil && entry.Tag != "" {
		return entry.Tag
	}
	return specialTag(key)
}

// specialTag classifies an out-of-vocabulary word: ASCII-digit runs are
// numerals, other ASCII runs are English, anything else is unknown.
func specialTag(key []rune) string {
	ascii, digits := 0, 0
	for _, r := range key {
		if isASCII(r) {
			ascii++
			if isASCIIDigit(r) {
				digits++
			}
		}
	}
	if ascii == 0 {
		return "x"
	}
	if ascii == digits {
		return "m"
	}
	return "eng"
}
