// Package main implements the condense CLI for one-shot local
// summarization of a terms-and-conditions document.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tncscanner/condense/engine/analyze"
	"github.com/tncscanner/condense/engine/document"
	"github.com/tncscanner/condense/engine/extract"
	"github.com/tncscanner/condense/engine/summarize"
	"github.com/tncscanner/condense/pkg/ollama"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		url         string
		ollamaURL   string
		model       string
		chunkTokens int
		maxPasses   int
		timeout     time.Duration
		asJSON      bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "condense [file]",
		Short: "Summarize a terms-and-conditions document",
		Long: `Summarize a terms-and-conditions document from a file, a URL, or stdin.

Reads the file argument when given, fetches --url when set, and falls
back to stdin otherwise. Prints the plain summary, or the full analysis
report with --json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			text, err := readSource(ctx, args, url, logger)
			if err != nil {
				return err
			}

			cfg := summarize.DefaultConfig()
			cfg.ChunkTokenLimit = chunkTokens
			cfg.MaxPasses = maxPasses

			svc := summarize.New(ollama.NewClient(ollamaURL, model), nil, logger)
			res, err := svc.SummarizeDocument(ctx, text, cfg)
			if err != nil {
				return err
			}
			if !res.Converged {
				logger.Warn("summary did not converge", "passes", res.Passes)
			}

			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
				return nil
			}

			doc, err := document.New(text)
			if err != nil {
				return err
			}
			report := analyze.Analyze(doc, res.Summary)
			out := struct {
				Summary   string         `json:"summary"`
				Report    analyze.Report `json:"report"`
				Passes    int            `json:"passes"`
				Converged bool           `json:"converged"`
			}{res.Summary, report, res.Passes, res.Converged}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "fetch the document from a URL")
	cmd.Flags().StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Ollama base URL")
	cmd.Flags().StringVarP(&model, "model", "m", "llama3.2", "model name")
	cmd.Flags().IntVar(&chunkTokens, "chunk-tokens", summarize.DefaultConfig().ChunkTokenLimit, "estimated-token budget per chunk")
	cmd.Flags().IntVar(&maxPasses, "max-passes", summarize.DefaultConfig().MaxPasses, "reduction pass budget")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Minute, "overall timeout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full analysis report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")

	return cmd
}

func readSource(ctx context.Context, args []string, url string, logger *slog.Logger) (string, error) {
	switch {
	case url != "" && len(args) > 0:
		return "", fmt.Errorf("a file argument and --url are mutually exclusive")
	case url != "":
		return extract.NewFetcher(30*time.Second, logger).FromURL(ctx, url)
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return extract.FromUpload(args[0], data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
