package han

// Rune classification utilities for mixed Chinese/ASCII text.
// CJK Unified Ideographs: U+4E00 - U+9FFF (main), plus Extension A.

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

var asciiSymbols = rangetable.New([]rune(" \t\n\r\v\f!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~")...)

var cjkSymbols = rangetable.New(
	'。', '？', '！', '，', '、', '；', '：',
	'“', '”', '‘', '’', '（', '）',
	'《', '》', '〈', '〉', '【', '】',
	'「', '」', '『', '』', '〔', '〕',
	'…', '—', '–', '～', '·', '　',
)

// DefaultSymbols is the default sentence pre-filter boundary set: ASCII
// whitespace and punctuation, Unicode whitespace, and common CJK
// punctuation. Callers may inject their own table instead.
var DefaultSymbols = rangetable.Merge(asciiSymbols, cjkSymbols, unicode.White_Space)

// IsHan checks if character is a CJK unified ideograph
func IsHan(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF)
}

func isASCII(r rune) bool {
	return r < 0x80
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
