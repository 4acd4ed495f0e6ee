package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tncscanner/condense/engine/extract"
	"github.com/tncscanner/condense/engine/jobs"
	"github.com/tncscanner/condense/engine/summarize"
)

func testWorker(t *testing.T, stub summarize.SummarizerFunc) *worker {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return &worker{
		svc:     summarize.New(stub, nil, logger),
		fetcher: extract.NewFetcher(time.Second, logger),
		timeout: time.Minute,
		logger:  logger,
	}
}

func firstWords(ctx context.Context, text string, minTokens, maxTokens int) (string, error) {
	words := strings.Fields(text)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " "), nil
}

func TestProcessText(t *testing.T) {
	w := testWorker(t, firstWords)
	job := jobs.NewSummarizeJob("You agree to binding arbitration. All sales are final.", "")

	res := w.process(context.Background(), job)
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.ID != job.ID {
		t.Errorf("id mismatch: %s", res.ID)
	}
	if res.Summary == "" || res.Report == nil {
		t.Fatal("expected summary and report")
	}
	if !res.Converged || res.Passes != 1 {
		t.Errorf("converged=%v passes=%d", res.Converged, res.Passes)
	}
}

func TestProcessEmptyText(t *testing.T) {
	w := testWorker(t, firstWords)
	res := w.process(context.Background(), jobs.SummarizeJob{ID: "j1", Text: "   "})
	if res.Error == "" {
		t.Fatal("expected error for empty text")
	}
	if res.Report != nil {
		t.Fatal("failed job should carry no report")
	}
}

func TestProcessSummarizerFailure(t *testing.T) {
	w := testWorker(t, func(ctx context.Context, text string, minTokens, maxTokens int) (string, error) {
		return "", errors.New("model offline")
	})
	res := w.process(context.Background(), jobs.SummarizeJob{ID: "j2", Text: "Some terms text here."})
	if res.Error == "" {
		t.Fatal("expected error when every chunk fails")
	}
}

func TestProcessJobOverrides(t *testing.T) {
	var seen int
	w := testWorker(t, func(ctx context.Context, text string, minTokens, maxTokens int) (string, error) {
		seen++
		return "short", nil
	})
	job := jobs.SummarizeJob{
		ID:              "j3",
		Text:            "One sentence. Two sentence. Three sentence.",
		ChunkTokenLimit: 2,
		MaxPasses:       1,
	}
	res := w.process(context.Background(), job)
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if seen < 2 {
		t.Errorf("expected multiple chunks with tiny limit, saw %d calls", seen)
	}
}
