package document

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller mistakes. Neither is retryable.
var (
	// ErrInvalidConfig marks pipeline configuration the caller got wrong
	// (non-positive chunk limit, inverted token bounds, zero passes).
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidInput marks an empty or otherwise unusable document.
	ErrInvalidInput = errors.New("invalid input")
)

// ChunkError wraps a summarization capability failure for one chunk with
// the pass and chunk index it occurred at.
type ChunkError struct {
	Pass  int
	Chunk int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("summarize chunk %d (pass %d): %v", e.Chunk, e.Pass, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// NewChunkError creates a ChunkError.
func NewChunkError(pass, chunk int, err error) *ChunkError {
	return &ChunkError{Pass: pass, Chunk: chunk, Err: err}
}
