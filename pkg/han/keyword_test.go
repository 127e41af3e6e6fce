package han

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIDF() map[string]float64 {
	return map[string]float64{
		"拖拉机":   9.0,
		"学院":    8.0,
		"手扶拖拉机": 7.5,
		"专业":    3.0,
		"中国":    6.0,
	}
}

func TestExtractTopKeywords(t *testing.T) {
	seg := newTestSegmenter(t, baseRecords())
	ke := NewKeywordExtractorFromTables(seg, testIDF(), []string{"一个", "没有"})

	keywords := ke.Extract("我是拖拉机学院手扶拖拉机专业的", 3)
	require.Len(t, keywords, 3)

	assert.Equal(t, "拖拉机", keywords[0].Word)
	assert.InDelta(t, 9.0, keywords[0].Weight, 1e-9) // tf 1 × idf 9; 手扶拖拉机 is its own token
	assert.Equal(t, "学院", keywords[1].Word)
	assert.Equal(t, "手扶拖拉机", keywords[2].Word)
	assert.GreaterOrEqual(t, keywords[1].Weight, keywords[2].Weight)
}

func TestExtractOffsets(t *testing.T) {
	seg := newTestSegmenter(t, baseRecords())
	ke := NewKeywordExtractorFromTables(seg, testIDF(), nil)

	s := "我是拖拉机学院手扶拖拉机专业的"
	keywords := ke.Extract(s, 1)
	require.Len(t, keywords, 1)
	require.Equal(t, "拖拉机", keywords[0].Word)
	require.Len(t, keywords[0].Offsets, 1)
	for _, off := range keywords[0].Offsets {
		assert.Equal(t, "拖拉机", s[off:off+len("拖拉机")])
	}
}

func TestExtractSkipsStopwordsAndSingles(t *testing.T) {
	seg := newTestSegmenter(t, baseRecords())
	ke := NewKeywordExtractorFromTables(seg, testIDF(), []string{"学院"})

	keywords := ke.Extract("我是拖拉机学院手扶拖拉机专业的", 10)
	for _, kw := range keywords {
		assert.NotEqual(t, "学院", kw.Word)
		assert.Greater(t, len([]rune(kw.Word)), 1)
	}
}

func TestExtractUnknownTermMeanIDF(t *testing.T) {
	seg := newTestSegmenter(t, baseRecords())
	idf := map[string]float64{"中国": 6.0, "学院": 8.0}
	ke := NewKeywordExtractorFromTables(seg, idf, nil)

	// 计算所 is not in the IDF table; it gets the column mean.
	keywords := ke.Extract("小明硕士毕业于中国科学院计算所", 20)
	var found bool
	for _, kw := range keywords {
		if kw.Word == "计算所" {
			found = true
			assert.InDelta(t, 7.0, kw.Weight, 1e-9)
		}
	}
	assert.True(t, found)
}

func TestNewKeywordExtractorFromFiles(t *testing.T) {
	dir := t.TempDir()
	idfPath := writeTestFile(t, dir, "idf.utf8", "拖拉机 9.0\n学院 8.0\nbroken line here\n专业 3.0\n")
	stopPath := writeTestFile(t, dir, "stop_words.utf8", "的\n了\n是\n")

	seg := newTestSegmenter(t, baseRecords())
	ke, err := NewKeywordExtractor(seg, idfPath, stopPath, nil)
	require.NoError(t, err)

	assert.InDelta(t, (9.0+8.0+3.0)/3, ke.idfAverage, 1e-9)
	_, stopped := ke.stopWords["的"]
	assert.True(t, stopped)

	keywords := ke.Extract("我是拖拉机学院手扶拖拉机专业的", 1)
	require.Len(t, keywords, 1)
	assert.Equal(t, "拖拉机", keywords[0].Word)
}

func TestNewKeywordExtractorMissingFiles(t *testing.T) {
	dir := t.TempDir()
	seg := newTestSegmenter(t, baseRecords())
	idfPath := writeTestFile(t, dir, "idf.utf8", "拖拉机 9.0\n")

	_, err := NewKeywordExtractor(seg, idfPath, dir+"/absent", nil)
	assert.Error(t, err)
	_, err = NewKeywordExtractor(seg, dir+"/absent", idfPath, nil)
	assert.Error(t, err)
}
