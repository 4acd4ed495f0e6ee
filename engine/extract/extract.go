// Package extract acquires document text from the supported input kinds:
// pasted text, a fetched URL, or an uploaded file. Output is raw text; the
// caller normalizes it through engine/document.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/time/rate"

	"github.com/tncscanner/condense/engine/document"
)

// ErrUnsupportedFormat marks an upload the service cannot parse (PDF,
// DOCX, arbitrary binary).
var ErrUnsupportedFormat = errors.New("unsupported file format")

// maxFetchBody caps how much of a fetched page is read.
const maxFetchBody = 8 << 20 // 8 MiB

// Fetcher downloads pages and extracts their paragraph text. Fetches are
// rate limited per Fetcher so a burst of requests stays polite to the
// origin.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher with the given HTTP timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		logger:  logger,
	}
}

// FromURL fetches a page and returns its paragraph text, one paragraph per
// line. Pages with no <p> content are rejected with ErrInvalidInput.
func (f *Fetcher) FromURL(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("extract: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extract: fetch %s: status %d", url, resp.StatusCode)
	}

	text, err := paragraphText(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return "", fmt.Errorf("extract: parse %s: %w", url, err)
	}
	if text == "" {
		return "", fmt.Errorf("extract: no paragraph text at %s: %w", url, document.ErrInvalidInput)
	}
	f.logger.Info("url extracted", "url", url, "chars", len(text))
	return text, nil
}

// FromUpload converts an uploaded file to text. Plain text and HTML are
// accepted; PDF and DOCX are detected and rejected explicitly so the
// caller can report a clear unsupported-format error instead of feeding
// binary garbage to the model.
func FromUpload(name string, data []byte) (string, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return "", fmt.Errorf("extract: %s: PDF uploads: %w", name, ErrUnsupportedFormat)
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"),
		mt.Is("application/msword"):
		return "", fmt.Errorf("extract: %s: word-processor uploads: %w", name, ErrUnsupportedFormat)
	case mt.Is("text/html"):
		text, err := paragraphText(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("extract: %s: %w", name, err)
		}
		return text, nil
	case strings.HasPrefix(mt.String(), "text/"):
		return string(data), nil
	case utf8.Valid(data):
		// Unrecognized but valid UTF-8; treat as plain text.
		return string(data), nil
	default:
		return "", fmt.Errorf("extract: %s: detected %s: %w", name, mt.String(), ErrUnsupportedFormat)
	}
}

// paragraphText joins the text of every <p> element, one per line.
func paragraphText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n"), nil
}
