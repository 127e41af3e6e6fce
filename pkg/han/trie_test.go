package han

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrieInsertFind(t *testing.T) {
	var tr trie
	a := &DictEntry{Word: []rune("中国"), Weight: -1}
	b := &DictEntry{Word: []rune("中国人"), Weight: -2}
	tr.insert(a.Word, a)
	tr.insert(b.Word, b)

	assert.Same(t, a, tr.find([]rune("中国")))
	assert.Same(t, b, tr.find([]rune("中国人")))
	assert.Nil(t, tr.find([]rune("中")))
	assert.Nil(t, tr.find([]rune("国")))
}

func TestTrieLastWriteWins(t *testing.T) {
	var tr trie
	a := &DictEntry{Word: []rune("中国"), Weight: -1}
	b := &DictEntry{Word: []rune("中国"), Weight: -2}
	tr.insert(a.Word, a)
	tr.insert(b.Word, b)
	assert.Same(t, b, tr.find([]rune("中国")))
}

func TestTrieDeleteKeepsPath(t *testing.T) {
	var tr trie
	short := &DictEntry{Word: []rune("中国")}
	long := &DictEntry{Word: []rune("中国人")}
	tr.insert(short.Word, short)
	tr.insert(long.Word, long)

	assert.True(t, tr.remove([]rune("中国")))
	assert.Nil(t, tr.find([]rune("中国")))
	assert.Same(t, long, tr.find([]rune("中国人")))

	assert.False(t, tr.remove([]rune("中国")))
	assert.False(t, tr.remove([]rune("没有")))
}

func TestTrieBuildDAG(t *testing.T) {
	var tr trie
	for _, w := range []string{"中", "中国", "中国科学院", "科学"} {
		e := &DictEntry{Word: []rune(w)}
		tr.insert(e.Word, e)
	}
	rs, err := DecodeRunes("中国科学院")
	require.NoError(t, err)

	dag := make([][]dagCand, len(rs))
	tr.buildDAG(rs, 0, len(rs), MaxWordLength, dag)

	ends := func(k int) []int {
		var out []int
		for _, c := range dag[k] {
			out = append(out, c.end)
		}
		return out
	}
	assert.Equal(t, []int{0, 1, 4}, ends(0)) // 中, 中国, 中国科学院
	assert.Equal(t, []int{1}, ends(1))       // 国 fallback only
	assert.Equal(t, []int{2, 3}, ends(2))    // 科 fallback, 科学
	assert.Equal(t, []int{3}, ends(3))
	assert.Equal(t, []int{4}, ends(4))

	// The single-rune fallback carries the entry only when the rune
	// alone is a word.
	assert.NotNil(t, dag[0][0].entry)
	assert.Nil(t, dag[1][0].entry)
}

func TestTrieBuildDAGMaxWordLen(t *testing.T) {
	var tr trie
	e := &DictEntry{Word: []rune("中国科学院")}
	tr.insert(e.Word, e)
	two := &DictEntry{Word: []rune("中国")}
	tr.insert(two.Word, two)

	rs, err := DecodeRunes("中国科学院")
	require.NoError(t, err)

	dag := make([][]dagCand, len(rs))
	tr.buildDAG(rs, 0, len(rs), 2, dag)
	assert.Equal(t, []dagCand{{end: 0}, {end: 1, entry: two}}, dag[0])
}
