package summarize

import "strings"

// Reduce merges a pass's partial summaries into one text, concatenating in
// chunk-index order with single spaces. Partials are never re-sorted by
// length or content — index order preserves the document's narrative flow.
// A chunk that failed (and so has no partial) simply contributes nothing.
func Reduce(pass SummaryPass) string {
	parts := make([]string, 0, len(pass.Parts))
	for _, p := range pass.Parts {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
