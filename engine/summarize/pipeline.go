package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tncscanner/condense/engine/document"
	"github.com/tncscanner/condense/pkg/fn"
)

// Service drives the map-reduce summarization loop. It holds no mutable
// state across invocations; every call builds its chunks, partials, and
// result fresh, so a Service is safe for concurrent use.
type Service struct {
	llm    Summarizer
	seg    Segmenter
	logger *slog.Logger
}

// New creates a pipeline Service. A nil segmenter falls back to the
// built-in punctuation splitter; a nil logger falls back to slog.Default.
func New(llm Summarizer, seg Segmenter, logger *slog.Logger) *Service {
	if seg == nil {
		seg = SegmenterFunc(document.SplitSentences)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{llm: llm, seg: seg, logger: logger}
}

// SummarizeDocument runs the full pipeline on text. Configuration and
// input errors surface immediately; chunk failures follow
// cfg.ToleratePartialFailures; running out of passes is not an error —
// the Result carries Converged=false and the shortest merge seen.
// With a deterministic Summarizer the call is idempotent.
func (s *Service) SummarizeDocument(ctx context.Context, text string, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	doc, err := document.New(text)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	input := doc.Text
	best := ""
	bestTokens := -1

	for pass := 1; pass <= cfg.MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		merged, nChunks, failures, err := s.runPass(ctx, input, pass, cfg)
		if err != nil {
			return nil, err
		}
		res.Passes = pass
		res.FinalChunks = nChunks
		res.Failures = append(res.Failures, failures...)

		tokens := document.EstimateTokens(merged)
		if bestTokens < 0 || tokens < bestTokens {
			best, bestTokens = merged, tokens
		}
		s.logger.Info("summarize pass done",
			"pass", pass, "chunks", nChunks, "merged_tokens", tokens, "target_max", cfg.FinalMaxTokens)

		if tokens <= cfg.FinalMaxTokens {
			res.Summary = merged
			res.Converged = true
			return res, nil
		}
		// Still too long: the merge becomes the next pass's document.
		input = merged
	}

	// Pass budget exhausted without converging. Degrade to the shortest
	// merge seen; the caller reads Converged=false from the metadata.
	s.logger.Warn("summarize did not converge",
		"passes", res.Passes, "best_tokens", bestTokens, "target_max", cfg.FinalMaxTokens)
	res.Summary = best
	res.Converged = false
	return res, nil
}

// runPass executes one chunk-summarize-reduce round over text.
func (s *Service) runPass(ctx context.Context, text string, pass int, cfg Config) (string, int, []ChunkFailure, error) {
	segment := fn.TracedStage("summarize.segment", fn.MapStage(s.seg.Split))
	chunk := fn.TracedStage("summarize.chunk",
		func(_ context.Context, sentences []document.Sentence) fn.Result[[]Chunk] {
			return fn.FromPair(BuildChunks(sentences, cfg.ChunkTokenLimit))
		})

	chunks, err := fn.Then(segment, chunk)(ctx, text).Unwrap()
	if err != nil {
		return "", 0, nil, err
	}
	if len(chunks) == 0 {
		return "", 0, nil, fmt.Errorf("summarize: pass %d produced no chunks: %w", pass, document.ErrInvalidInput)
	}

	// Fan out one model call per chunk. Results come back in input order,
	// which is chunk-index order, so the reducer sees partials pre-sorted.
	mapChunk := fn.TracedStage("summarize.map", s.chunkStage(cfg))
	results := fn.ParMapResult(ctx, chunks, cfg.Workers, func(ctx context.Context, c Chunk) fn.Result[PartialSummary] {
		return mapChunk(ctx, c)
	})

	// Synchronization point: every chunk has completed or failed by here.
	sp := SummaryPass{Number: pass}
	var firstErr error
	for i, r := range results {
		partial, err := r.Unwrap()
		if err == nil {
			sp.Parts = append(sp.Parts, partial)
			continue
		}
		if ctx.Err() != nil {
			// Caller cancellation, not a chunk-level fault.
			return "", 0, nil, ctx.Err()
		}
		chunkErr := document.NewChunkError(pass, chunks[i].Index, err)
		if !cfg.ToleratePartialFailures {
			return "", 0, nil, chunkErr
		}
		if firstErr == nil {
			firstErr = chunkErr
		}
		s.logger.Warn("chunk summarization failed",
			"pass", pass, "chunk", chunks[i].Index, "err", err)
		sp.Failures = append(sp.Failures, ChunkFailure{
			Pass: pass, Chunk: chunks[i].Index, Reason: err.Error(),
		})
	}

	merged := Reduce(sp)
	if strings.TrimSpace(merged) == "" {
		// Every chunk failed; tolerance cannot conjure a summary.
		return "", 0, nil, fmt.Errorf("summarize: pass %d: all %d chunks failed: %w", pass, len(chunks), firstErr)
	}
	return merged, len(chunks), sp.Failures, nil
}

// chunkStage wraps one model call, applying the optional per-call timeout.
func (s *Service) chunkStage(cfg Config) fn.Stage[Chunk, PartialSummary] {
	return func(ctx context.Context, c Chunk) fn.Result[PartialSummary] {
		if cfg.CallTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.CallTimeout)
			defer cancel()
		}
		out, err := s.llm.Summarize(ctx, c.Text(), cfg.FinalMinTokens, cfg.FinalMaxTokens)
		if err != nil {
			return fn.Err[PartialSummary](err)
		}
		return fn.Ok(PartialSummary{
			ChunkIndex: c.Index,
			Text:       out,
			Tokens:     document.EstimateTokens(out),
		})
	}
}
