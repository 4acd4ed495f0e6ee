// Package summarize implements the map-reduce summarization pipeline:
// sentences are packed into token-bounded chunks, each chunk is summarized
// independently through an injected model capability, and the partial
// summaries are merged in order — looping over the merged text until it
// fits the target length or the pass budget runs out.
package summarize

import (
	"fmt"
	"strings"
	"time"

	"github.com/tncscanner/condense/engine/document"
)

// Chunk is an ordered, contiguous group of sentences whose combined token
// estimate fits the chunk limit. Sentences keep document order and no
// sentence belongs to two chunks.
type Chunk struct {
	Index     int
	Sentences []document.Sentence
	Tokens    int
}

// Text returns the chunk's sentences joined with single spaces.
func (c Chunk) Text() string {
	parts := make([]string, len(c.Sentences))
	for i, s := range c.Sentences {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// PartialSummary is the model output for one chunk. ChunkIndex orders
// partials during reduction.
type PartialSummary struct {
	ChunkIndex int
	Text       string
	Tokens     int
}

// SummaryPass collects the partial summaries and recorded failures of one
// reduction round.
type SummaryPass struct {
	Number   int
	Parts    []PartialSummary
	Failures []ChunkFailure
}

// ChunkFailure records a tolerated chunk-level summarization failure.
type ChunkFailure struct {
	Pass   int    `json:"pass"`
	Chunk  int    `json:"chunk"`
	Reason string `json:"reason"`
}

// Result is the pipeline output: the final summary plus metadata about how
// it was produced. Converged=false means the pass budget was exhausted and
// Summary is the shortest merge seen rather than one under the target.
type Result struct {
	Summary     string         `json:"summary"`
	Passes      int            `json:"passes"`
	FinalChunks int            `json:"final_chunks"`
	Failures    []ChunkFailure `json:"failures,omitempty"`
	Converged   bool           `json:"converged"`
}

// Config tunes one pipeline invocation.
type Config struct {
	// ChunkTokenLimit is the estimated-token budget per chunk.
	ChunkTokenLimit int `json:"chunk_token_limit"`
	// FinalMinTokens and FinalMaxTokens are passed to the model on every
	// call; FinalMaxTokens is also the convergence target for the merge.
	FinalMinTokens int `json:"final_min_tokens"`
	FinalMaxTokens int `json:"final_max_tokens"`
	// MaxPasses bounds the reduction loop.
	MaxPasses int `json:"max_passes"`
	// ToleratePartialFailures records chunk failures instead of aborting.
	ToleratePartialFailures bool `json:"tolerate_partial_failures"`
	// Workers bounds concurrent model calls per pass. <=0 means one worker
	// per chunk.
	Workers int `json:"workers,omitempty"`
	// CallTimeout, when positive, is applied to each model call. The
	// pipeline enforces no other timeout.
	CallTimeout time.Duration `json:"-"`
}

// DefaultConfig mirrors the service defaults: 700-token chunks, 30..150
// token summaries, at most 3 passes, failures tolerated.
func DefaultConfig() Config {
	return Config{
		ChunkTokenLimit:         700,
		FinalMinTokens:          30,
		FinalMaxTokens:          150,
		MaxPasses:               3,
		ToleratePartialFailures: true,
		Workers:                 4,
	}
}

func (c Config) validate() error {
	switch {
	case c.ChunkTokenLimit <= 0:
		return fmt.Errorf("summarize: chunk token limit must be positive, got %d: %w",
			c.ChunkTokenLimit, document.ErrInvalidConfig)
	case c.FinalMinTokens < 0:
		return fmt.Errorf("summarize: final min tokens must not be negative, got %d: %w",
			c.FinalMinTokens, document.ErrInvalidConfig)
	case c.FinalMinTokens > c.FinalMaxTokens:
		return fmt.Errorf("summarize: final min tokens %d exceeds max %d: %w",
			c.FinalMinTokens, c.FinalMaxTokens, document.ErrInvalidConfig)
	case c.MaxPasses < 1:
		return fmt.Errorf("summarize: max passes must be at least 1, got %d: %w",
			c.MaxPasses, document.ErrInvalidConfig)
	}
	return nil
}
