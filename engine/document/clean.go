package document

import (
	"regexp"
	"strings"
)

var (
	blankRuns = regexp.MustCompile(`\n{3,}`)
	inlineWS  = regexp.MustCompile(`[ \t\f\v]+`)
)

// Clean normalizes raw extracted text: CR/CRLF become LF, runs of blank
// lines collapse to one paragraph break, runs of inline whitespace collapse
// to a single space, and every line is trimmed. Paragraph breaks (double
// newlines) survive so clause scanning can still work per paragraph.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = inlineWS.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// EstimateTokens approximates the token count of text as its whitespace
// word count. It is deliberately cheap and monotonic: adding text never
// lowers the estimate. The chunk builder and the reducer's convergence
// check must both use this estimator so their decisions agree; it is not
// the model tokenizer's exact count.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}
