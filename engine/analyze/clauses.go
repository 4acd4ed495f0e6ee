// Package analyze provides the rule-based document analysis that rides
// along with the summary: clause classification, risk scoring, key points,
// and reading time. Everything here is deterministic keyword matching —
// no model calls.
package analyze

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ClauseKeywords maps a clause label to the lowercase keywords that
// indicate it.
var ClauseKeywords = map[string][]string{
	"Data Collection":       {"collect", "personal data", "third party", "share your data", "cookies", "tracking"},
	"Refunds":               {"refund", "cancel", "cancellation", "return", "chargeback"},
	"Auto-Renewal":          {"auto-renew", "automatic renewal", "renewal"},
	"Liability":             {"liab", "limitation of liability", "not liable", "indirect damages", "consequential"},
	"Arbitration":           {"arbitration", "binding arbitration", "dispute resolution", "class action waiver"},
	"Intellectual Property": {"intellectual property", "copyright", "trademark", "license to use"},
}

// maxMatchesPerLabel caps how many paragraphs are recorded per label.
const maxMatchesPerLabel = 10

// clausesPerLabel is how many matched paragraphs surface as important clauses.
const clausesPerLabel = 3

var paragraphSplit = regexp.MustCompile(`\n+`)

// Clauses scans the document paragraph-wise and returns, per clause label,
// the paragraphs containing any of the label's keywords. Labels with no
// matches are absent from the result.
func Clauses(text string) map[string][]string {
	matches := make(map[string][]string)

	for _, p := range paragraphSplit.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lower := strings.ToLower(p)
		for label, keywords := range ClauseKeywords {
			if len(matches[label]) >= maxMatchesPerLabel {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					matches[label] = append(matches[label], p)
					break
				}
			}
		}
	}
	return matches
}

// ImportantClauses flattens clause matches into "[Label] paragraph" lines,
// at most clausesPerLabel per label, labels in alphabetical order so the
// output is stable.
func ImportantClauses(matches map[string][]string) []string {
	labels := make([]string, 0, len(matches))
	for label := range matches {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var out []string
	for _, label := range labels {
		paragraphs := matches[label]
		if len(paragraphs) > clausesPerLabel {
			paragraphs = paragraphs[:clausesPerLabel]
		}
		for _, p := range paragraphs {
			out = append(out, fmt.Sprintf("[%s] %s", label, p))
		}
	}
	return out
}
