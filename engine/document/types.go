// Package document defines the core text types, validation, and error
// taxonomy for the condense pipeline. It acts as the validation gate at
// pipeline entry points.
package document

import (
	"fmt"
	"strings"
)

// Document is an immutable input text. The zero value is an empty document.
type Document struct {
	Text string
}

// New normalizes raw text and wraps it as a Document.
// Input that is empty after normalization is rejected with ErrInvalidInput.
func New(raw string) (Document, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return Document{}, fmt.Errorf("document: no usable text: %w", ErrInvalidInput)
	}
	return Document{Text: cleaned}, nil
}

// Len returns the character length of the document.
func (d Document) Len() int { return len(d.Text) }

// Words returns the whitespace-delimited word count of the document.
func (d Document) Words() int { return len(strings.Fields(d.Text)) }

// Sentence is a substring of a Document with its byte offsets into the
// source text. Ordering follows appearance order.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Tokens returns the estimated token count of the sentence.
func (s Sentence) Tokens() int { return EstimateTokens(s.Text) }
