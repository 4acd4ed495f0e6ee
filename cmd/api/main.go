// Package main implements the condense API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tncscanner/condense/engine/extract"
	"github.com/tncscanner/condense/engine/summarize"
	"github.com/tncscanner/condense/pkg/metrics"
	"github.com/tncscanner/condense/pkg/mid"
	"github.com/tncscanner/condense/pkg/ollama"
)

// Config holds all environment-based configuration.
type Config struct {
	Port            string
	CORSOrigin      string
	OllamaURL       string
	Model           string
	NATSURL         string
	ChunkTokenLimit int
	MaxPasses       int
	Workers         int
	CallTimeout     time.Duration
}

func loadConfig() Config {
	base := summarize.DefaultConfig()
	return Config{
		Port:            envOr("PORT", "8080"),
		CORSOrigin:      envOr("CORS_ORIGIN", "*"),
		OllamaURL:       envOr("OLLAMA_URL", "http://localhost:11434"),
		Model:           envOr("SUMMARIZER_MODEL", "llama3.2"),
		NATSURL:         os.Getenv("NATS_URL"),
		ChunkTokenLimit: envIntOr("CHUNK_TOKEN_LIMIT", base.ChunkTokenLimit),
		MaxPasses:       envIntOr("MAX_PASSES", base.MaxPasses),
		Workers:         envIntOr("SUMMARIZE_WORKERS", base.Workers),
		CallTimeout:     time.Duration(envIntOr("CALL_TIMEOUT_SECONDS", 120)) * time.Second,
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

func (c Config) pipelineConfig() summarize.Config {
	cfg := summarize.DefaultConfig()
	cfg.ChunkTokenLimit = c.ChunkTokenLimit
	cfg.MaxPasses = c.MaxPasses
	cfg.Workers = c.Workers
	cfg.CallTimeout = c.CallTimeout
	return cfg
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llm := ollama.NewClient(cfg.OllamaURL, cfg.Model)
	svc := summarize.New(llm, nil, logger)
	fetcher := extract.NewFetcher(30*time.Second, logger)

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer nc.Drain()
		logger.Info("nats connected", "url", cfg.NATSURL)
	}

	reg := metrics.New()
	srv := newServer(svc, fetcher, cfg, nc, reg, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", srv.handleHealth)
	mux.HandleFunc("POST /api/summarize", srv.handleSummarize)
	mux.HandleFunc("POST /api/jobs", srv.handleSubmitJob)
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.OTel("condense-api"),
		mid.CORS(cfg.CORSOrigin),
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // multi-pass summarization of long documents is slow
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "model", cfg.Model)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}
