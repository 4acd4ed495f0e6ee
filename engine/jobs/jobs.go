// Package jobs defines the messages exchanged between the API and the
// background worker over NATS.
package jobs

import (
	"github.com/google/uuid"

	"github.com/tncscanner/condense/engine/analyze"
)

// NATS subjects and the worker queue group.
const (
	SubjectSubmit = "condense.jobs.submit"
	SubjectDone   = "condense.jobs.done"
	WorkerQueue   = "condense-workers"
)

// SummarizeJob asks a worker to summarize a document. Exactly one of Text
// or URL is set.
type SummarizeJob struct {
	ID              string `json:"id"`
	Text            string `json:"text,omitempty"`
	URL             string `json:"url,omitempty"`
	ChunkTokenLimit int    `json:"chunk_token_limit,omitempty"`
	MaxPasses       int    `json:"max_passes,omitempty"`
}

// NewSummarizeJob creates a job with a fresh UUID.
func NewSummarizeJob(text, url string) SummarizeJob {
	return SummarizeJob{ID: uuid.NewString(), Text: text, URL: url}
}

// JobResult is published on SubjectDone when a worker finishes a job.
type JobResult struct {
	ID        string          `json:"id"`
	Summary   string          `json:"summary,omitempty"`
	Report    *analyze.Report `json:"report,omitempty"`
	Converged bool            `json:"converged"`
	Passes    int             `json:"passes"`
	Error     string          `json:"error,omitempty"`
}
