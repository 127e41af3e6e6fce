package han

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared fixtures: a small vocabulary and a hand-sized HMM model large
// enough to drive every strategy.

func baseRecords() []Record {
	return []Record{
		{"他", 10000, "r"},
		{"来到", 2000, "v"},
		{"了", 30000, "ul"},
		{"网易", 1000, "nz"},
		{"大厦", 800, "n"},
		{"世界", 8000, "n"},
		{"小明", 300, "nr"},
		{"硕士", 400, "n"},
		{"毕业", 600, "n"},
		{"于", 5000, "p"},
		{"中国", 5000, "ns"},
		{"科学", 3000, "n"},
		{"学院", 2000, "n"},
		{"科学院", 1500, "n"},
		{"中国科学院", 1000, "nt"},
		{"计算", 1000, "v"},
		{"计算所", 500, "n"},
		{"拖拉机", 1500, "n"},
		{"手扶拖拉机", 100, "n"},
		{"专业", 1000, "n"},
		{"的", 50000, "uj"},
		{"我", 20000, "r"},
		{"是", 25000, "v"},
	}
}

// recordsWithHangyan adds 杭研 for the in-dictionary scenarios.
func recordsWithHangyan() []Record {
	return append(baseRecords(), Record{"杭研", 500, "nz"})
}

func legalTrans() [statusCount][statusCount]float64 {
	var trans [statusCount][statusCount]float64
	for i := range trans {
		for j := range trans[i] {
			trans[i][j] = minDouble
		}
	}
	trans[stateB][stateE] = -0.51082562376599
	trans[stateB][stateM] = -0.916290731874155
	trans[stateE][stateB] = -0.5897149736854513
	trans[stateE][stateS] = -0.8085250474669937
	trans[stateM][stateE] = -0.33344856811948514
	trans[stateM][stateM] = -1.2603623820268226
	trans[stateS][stateB] = -0.7211965654669841
	trans[stateS][stateS] = -0.6658631448798212
	return trans
}

func testStart() [statusCount]float64 {
	return [statusCount]float64{
		stateB: -0.26268660809250016,
		stateE: minDouble,
		stateM: minDouble,
		stateS: -1.4652633398537678,
	}
}

func testEmit() [statusCount]map[rune]float64 {
	return [statusCount]map[rune]float64{
		stateB: {'杭': -5.0, '网': -4.0},
		stateE: {'研': -5.0, '易': -4.0},
		stateM: {'科': -6.0},
		stateS: {'他': -4.0, '了': -4.0, '我': -4.0, '是': -4.0, '的': -4.0, '于': -4.0},
	}
}

func testModel() *HMMModel {
	return NewHMMModel(testStart(), legalTrans(), testEmit())
}

func newTestDictionary(t interface{ Fatalf(string, ...interface{}) }, records []Record, user []Record, opt WeightOption) *Dictionary {
	d := NewDictionary(nil)
	if err := d.LoadRecords(records, user, opt); err != nil {
		t.Fatalf("load records: %v", err)
	}
	return d
}

func newTestSegmenter(t interface{ Fatalf(string, ...interface{}) }, records []Record) *Segmenter {
	return NewFromParts(newTestDictionary(t, records, nil, WeightMedian), testModel(), nil, nil)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func wordTexts(words []Word) []string {
	texts := make([]string, 0, len(words))
	for _, w := range words {
		texts = append(texts, w.Text)
	}
	return texts
}
