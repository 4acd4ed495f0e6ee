package summarize

import (
	"context"

	"github.com/tncscanner/condense/engine/document"
)

// Summarizer is the injected model capability. Implementations may be slow
// and may fail; they must be safe to call concurrently. minTokens and
// maxTokens are hints in the model's own token units.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, text string, minTokens, maxTokens int) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error) {
	return f(ctx, text, minTokens, maxTokens)
}

// Segmenter is the injected sentence splitter: deterministic, pure, and
// side-effect free.
type Segmenter interface {
	Split(text string) []document.Sentence
}

// SegmenterFunc adapts a function to the Segmenter interface.
type SegmenterFunc func(text string) []document.Sentence

func (f SegmenterFunc) Split(text string) []document.Sentence { return f(text) }
