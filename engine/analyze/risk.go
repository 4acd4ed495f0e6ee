package analyze

import (
	"sort"
	"strings"
)

// RiskKeywords maps a red-flag phrase to its weight.
var RiskKeywords = map[string]int{
	"share your data":         3,
	"third party":             2,
	"binding arbitration":     3,
	"no refunds":              2,
	"automatic renewal":       2,
	"limitation of liability": 2,
	"class action waiver":     3,
}

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Risk is the weighted red-flag score for a document.
type Risk struct {
	Score int      `json:"score"`
	Level string   `json:"level"`
	Found []string `json:"found"`
}

// ScoreRisk sums the weights of every risk phrase present in the document
// and buckets the total: >=6 high, >=3 medium, else low. Found phrases are
// sorted for stable output.
func ScoreRisk(text string) Risk {
	lower := strings.ToLower(text)
	r := Risk{Level: RiskLow}

	for kw, weight := range RiskKeywords {
		if strings.Contains(lower, kw) {
			r.Score += weight
			r.Found = append(r.Found, kw)
		}
	}
	sort.Strings(r.Found)

	switch {
	case r.Score >= 6:
		r.Level = RiskHigh
	case r.Score >= 3:
		r.Level = RiskMedium
	}
	return r
}
