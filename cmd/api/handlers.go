package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tncscanner/condense/engine/analyze"
	"github.com/tncscanner/condense/engine/document"
	"github.com/tncscanner/condense/engine/extract"
	"github.com/tncscanner/condense/engine/jobs"
	"github.com/tncscanner/condense/engine/summarize"
	"github.com/tncscanner/condense/pkg/metrics"
	"github.com/tncscanner/condense/pkg/mid"
	"github.com/tncscanner/condense/pkg/natsutil"
)

const maxUploadBytes = 10 << 20

type server struct {
	svc     *summarize.Service
	fetcher *extract.Fetcher
	cfg     Config
	nc      *nats.Conn
	pipe    *metrics.Pipeline
	logger  *slog.Logger
}

func newServer(svc *summarize.Service, fetcher *extract.Fetcher, cfg Config, nc *nats.Conn, reg *metrics.Registry, logger *slog.Logger) *server {
	return &server{
		svc:     svc,
		fetcher: fetcher,
		cfg:     cfg,
		nc:      nc,
		pipe:    metrics.NewPipeline(reg),
		logger:  logger,
	}
}

// SummarizeRequest is the JSON body for POST /api/summarize. Exactly one
// of Text or URL must be set; file uploads use multipart instead.
type SummarizeRequest struct {
	Text       string `json:"text,omitempty"`
	URL        string `json:"url,omitempty"`
	IncludeRaw bool   `json:"include_raw,omitempty"`
}

// Metadata describes how the summary was produced.
type Metadata struct {
	WordCount int                      `json:"word_count"`
	Chunks    int                      `json:"chunks"`
	Passes    int                      `json:"passes"`
	Converged bool                     `json:"converged"`
	Risk      analyze.Risk             `json:"risk"`
	Failures  []summarize.ChunkFailure `json:"failures,omitempty"`
	RequestID string                   `json:"request_id,omitempty"`
}

// SummarizeResponse is the JSON response for POST /api/summarize.
type SummarizeResponse struct {
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	KeyPoints        []string `json:"keyPoints"`
	RiskLevel        string   `json:"riskLevel"`
	ReadingTime      string   `json:"readingTime"`
	ImportantClauses []string `json:"importantClauses"`
	RawExtracted     string   `json:"raw_extracted,omitempty"`
	Metadata         Metadata `json:"metadata"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  s.cfg.Model,
	})
}

func (s *server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	s.pipe.Requests.Inc()
	start := time.Now()

	text, includeRaw, err := s.readInput(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := document.New(text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.SummarizeDocument(r.Context(), text, s.cfg.pipelineConfig())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report := analyze.Analyze(doc, res.Summary)
	s.pipe.ObserveRun(res.Passes, res.FinalChunks, len(res.Failures), time.Since(start).Seconds())

	resp := SummarizeResponse{
		Title:            deriveTitle(doc),
		Summary:          res.Summary,
		KeyPoints:        report.KeyPoints,
		RiskLevel:        report.Risk.Level,
		ReadingTime:      report.ReadingTime,
		ImportantClauses: report.ImportantClauses,
		Metadata: Metadata{
			WordCount: report.WordCount,
			Chunks:    res.FinalChunks,
			Passes:    res.Passes,
			Converged: res.Converged,
			Risk:      report.Risk,
			Failures:  res.Failures,
			RequestID: mid.RequestIDFrom(r.Context()),
		},
	}
	if includeRaw {
		resp.RawExtracted = doc.Text
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSubmitJob enqueues an asynchronous summarize job over NATS and
// returns 202 with the job ID. Requires NATS_URL to be configured.
func (s *server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if s.nc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "job queue not configured"})
		return
	}

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if (req.Text == "") == (req.URL == "") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one of text or url is required"})
		return
	}

	job := jobs.NewSummarizeJob(req.Text, req.URL)
	job.ChunkTokenLimit = s.cfg.ChunkTokenLimit
	job.MaxPasses = s.cfg.MaxPasses
	if err := natsutil.Publish(r.Context(), s.nc, jobs.SubjectSubmit, job); err != nil {
		s.logger.Error("job publish failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": job.ID})
}

// readInput resolves the request into document text from JSON text, a
// fetched URL, or an uploaded file.
func (s *server) readInput(r *http.Request) (text string, includeRaw bool, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", false, fmt.Errorf("parse upload: %w: %v", document.ErrInvalidInput, err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return "", false, fmt.Errorf("missing file field: %w", document.ErrInvalidInput)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			return "", false, err
		}
		text, err := extract.FromUpload(hdr.Filename, data)
		if err != nil {
			return "", false, err
		}
		return text, r.FormValue("include_raw") == "true", nil
	}

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", false, fmt.Errorf("invalid request body: %w", document.ErrInvalidInput)
	}
	switch {
	case req.Text != "" && req.URL != "":
		return "", false, fmt.Errorf("text and url are mutually exclusive: %w", document.ErrInvalidInput)
	case req.URL != "":
		text, err := s.fetcher.FromURL(r.Context(), req.URL)
		if err != nil {
			return "", false, err
		}
		return text, req.IncludeRaw, nil
	default:
		return req.Text, req.IncludeRaw, nil
	}
}

// writeError maps pipeline errors onto HTTP status codes.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.pipe.RequestErrors.Inc()

	var chunkErr *document.ChunkError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, document.ErrInvalidInput), errors.Is(err, document.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, extract.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case errors.As(err, &chunkErr):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("summarize failed", "err", err, "request_id", mid.RequestIDFrom(r.Context()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// deriveTitle uses the document's first sentence, truncated to keep the
// field display-sized.
func deriveTitle(doc document.Document) string {
	sentences := document.SplitSentences(doc.Text)
	if len(sentences) == 0 {
		return "Document"
	}
	title := sentences[0].Text
	runes := []rune(title)
	if len(runes) > 80 {
		title = string(runes[:80]) + "..."
	}
	return title
}
