package analyze

import (
	"fmt"
	"strings"

	"github.com/tncscanner/condense/engine/document"
	"github.com/tncscanner/condense/pkg/fn"
)

// maxKeyPoints caps how many summary sentences become key points.
const maxKeyPoints = 8

// wordsPerMinute is the assumed reading speed for the estimate.
const wordsPerMinute = 200

// Report is the rule-based analysis attached to a summary response.
type Report struct {
	KeyPoints        []string       `json:"key_points"`
	Risk             Risk           `json:"risk"`
	ImportantClauses []string       `json:"important_clauses"`
	ClauseCounts     map[string]int `json:"clause_counts"`
	ReadingTime      string         `json:"reading_time"`
	WordCount        int            `json:"word_count"`
}

// Analyze runs clause classification and risk scoring over the document
// and extracts key points from its summary.
func Analyze(doc document.Document, summary string) Report {
	clauses := Clauses(doc.Text)

	counts := make(map[string]int, len(clauses))
	for label, paragraphs := range clauses {
		counts[label] = len(paragraphs)
	}

	return Report{
		KeyPoints:        KeyPoints(summary),
		Risk:             ScoreRisk(doc.Text),
		ImportantClauses: ImportantClauses(clauses),
		ClauseCounts:     counts,
		ReadingTime:      ReadingTime(doc.Words()),
		WordCount:        doc.Words(),
	}
}

// KeyPoints returns the first sentences of the summary, trimmed, capped at
// maxKeyPoints.
func KeyPoints(summary string) []string {
	sentences := document.SplitSentences(summary)
	if len(sentences) > maxKeyPoints {
		sentences = sentences[:maxKeyPoints]
	}
	return fn.Map(sentences, func(s document.Sentence) string {
		return strings.TrimSpace(s.Text)
	})
}

// ReadingTime estimates reading time for a word count at wordsPerMinute,
// never reporting less than one minute.
func ReadingTime(words int) string {
	minutes := words / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d minutes", minutes)
}
