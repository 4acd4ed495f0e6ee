package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences splits text into sentences on terminal punctuation and
// newlines, recording byte offsets into the source. A '.', '!' or '?' only
// terminates a sentence when followed by whitespace or end of text, which
// keeps decimals and most abbreviations intact. Deterministic and pure.
func SplitSentences(text string) []Sentence {
	var out []Sentence
	start := -1

	for i, r := range text {
		if start == -1 {
			if unicode.IsSpace(r) {
				continue
			}
			start = i
		}
		if !isBoundary(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if r != '\n' && end < len(text) && !unicode.IsSpace(rune(text[end])) {
			continue // mid-token punctuation, e.g. "3.5" or "e.g."
		}
		if s, ok := makeSentence(text, start, end); ok {
			out = append(out, s)
		}
		start = -1
	}
	if start != -1 {
		if s, ok := makeSentence(text, start, len(text)); ok {
			out = append(out, s)
		}
	}
	return out
}

func isBoundary(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '\n'
}

// makeSentence trims trailing whitespace off text[start:end] and reports
// whether anything remains.
func makeSentence(text string, start, end int) (Sentence, bool) {
	seg := strings.TrimRightFunc(text[start:end], unicode.IsSpace)
	if seg == "" {
		return Sentence{}, false
	}
	return Sentence{Text: seg, Start: start, End: start + len(seg)}, true
}
