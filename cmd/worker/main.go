// Package main implements the condense background worker. It consumes
// summarize jobs from NATS, runs the pipeline, and publishes results.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tncscanner/condense/engine/analyze"
	"github.com/tncscanner/condense/engine/document"
	"github.com/tncscanner/condense/engine/extract"
	"github.com/tncscanner/condense/engine/jobs"
	"github.com/tncscanner/condense/engine/summarize"
	"github.com/tncscanner/condense/pkg/natsutil"
	"github.com/tncscanner/condense/pkg/ollama"
)

// Config holds all environment-based configuration.
type Config struct {
	NATSURL    string
	OllamaURL  string
	Model      string
	JobTimeout time.Duration
}

func loadConfig() Config {
	return Config{
		NATSURL:    envOr("NATS_URL", nats.DefaultURL),
		OllamaURL:  envOr("OLLAMA_URL", "http://localhost:11434"),
		Model:      envOr("SUMMARIZER_MODEL", "llama3.2"),
		JobTimeout: time.Duration(envIntOr("JOB_TIMEOUT_SECONDS", 600)) * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return err
	}
	defer nc.Drain()

	llm := ollama.NewClient(cfg.OllamaURL, cfg.Model)
	w := &worker{
		svc:     summarize.New(llm, nil, logger),
		fetcher: extract.NewFetcher(30*time.Second, logger),
		nc:      nc,
		timeout: cfg.JobTimeout,
		logger:  logger,
	}

	sub, err := natsutil.QueueSubscribe(nc, jobs.SubjectSubmit, jobs.WorkerQueue, w.handle)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	logger.Info("worker started", "nats", cfg.NATSURL, "model", cfg.Model)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

type worker struct {
	svc     *summarize.Service
	fetcher *extract.Fetcher
	nc      *nats.Conn
	timeout time.Duration
	logger  *slog.Logger
}

// handle processes one summarize job and publishes the outcome. Failures
// are published as results with the error set, never swallowed.
func (w *worker) handle(ctx context.Context, job jobs.SummarizeJob) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	result := w.process(ctx, job)
	if result.Error != "" {
		w.logger.Error("job failed", "job", job.ID, "err", result.Error)
	} else {
		w.logger.Info("job done", "job", job.ID, "passes", result.Passes, "duration", time.Since(start))
	}

	if err := natsutil.Publish(ctx, w.nc, jobs.SubjectDone, result); err != nil {
		w.logger.Error("result publish failed", "job", job.ID, "err", err)
	}
}

func (w *worker) process(ctx context.Context, job jobs.SummarizeJob) jobs.JobResult {
	text := job.Text
	if job.URL != "" {
		fetched, err := w.fetcher.FromURL(ctx, job.URL)
		if err != nil {
			return jobs.JobResult{ID: job.ID, Error: err.Error()}
		}
		text = fetched
	}

	cfg := summarize.DefaultConfig()
	if job.ChunkTokenLimit > 0 {
		cfg.ChunkTokenLimit = job.ChunkTokenLimit
	}
	if job.MaxPasses > 0 {
		cfg.MaxPasses = job.MaxPasses
	}

	doc, err := document.New(text)
	if err != nil {
		return jobs.JobResult{ID: job.ID, Error: err.Error()}
	}
	res, err := w.svc.SummarizeDocument(ctx, text, cfg)
	if err != nil {
		return jobs.JobResult{ID: job.ID, Error: err.Error()}
	}

	report := analyze.Analyze(doc, res.Summary)
	return jobs.JobResult{
		ID:        job.ID,
		Summary:   res.Summary,
		Report:    &report,
		Converged: res.Converged,
		Passes:    res.Passes,
	}
}
