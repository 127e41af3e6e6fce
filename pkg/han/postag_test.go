package han

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagDictionaryWords(t *testing.T) {
	seg := newTestSegmenter(t, recordsWithHangyan())
	tagged := seg.Tag("他来到了网易杭研大厦")

	want := map[string]string{
		"他":  "r",
		"来到": "v",
		"了":  "ul",
		"网易": "nz",
		"杭研": "nz",
		"大厦": "n",
	}
	require.Len(t, tagged, 6)
	for _, tw := range tagged {
		assert.Equal(t, want[tw.Text], tw.Tag, "word %s", tw.Text)
	}
}

func TestTagOOVHeuristics(t *testing.T) {
	seg := newTestSegmenter(t, baseRecords())
	tagged := seg.Tag("iphone 123 齉龘")

	tags := map[string]string{}
	for _, tw := range tagged {
		tags[tw.Text] = tw.Tag
	}
	assert.Equal(t, "eng", tags["iphone"])
	assert.Equal(t, "m", tags["123"])
	// The unknown han pair falls through to x whatever the HMM makes
	// of it.
	for text, tag := range tags {
		assert.NotEmpty(t, tag, "word %s", text)
		if text != "iphone" && text != "123" && text != " " {
			assert.Equal(t, "x", tag, "word %s", text)
		}
	}
}

func TestTagEveryWordTagged(t *testing.T) {
	seg := newTestSegmenter(t, baseRecords())
	for _, s := range []string{
		"他来到了网易杭研大厦",
		"hello, 世界! 123",
	} {
		for _, tw := range seg.Tag(s) {
			assert.NotEmpty(t, tw.Tag, "input %s word %s", s, tw.Text)
		}
	}
}

func TestLookupTag(t *testing.T) {
	seg := newTestSegmenter(t, baseRecords())
	assert.Equal(t, "ns", seg.LookupTag("中国"))
	assert.Equal(t, "eng", seg.LookupTag("golang"))
	assert.Equal(t, "m", seg.LookupTag("2024"))
	assert.Equal(t, "x", seg.LookupTag("齉"))
	assert.Equal(t, "x", seg.LookupTag("\xff"))
}
