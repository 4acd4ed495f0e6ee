// Package ollama provides an Ollama-backed implementation of the
// summarize.Summarizer capability using the /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tncscanner/condense/pkg/fn"
	"github.com/tncscanner/condense/pkg/resilience"
)

// Client calls a local Ollama instance. Calls go through a rate limiter
// and a circuit breaker so a struggling model host sheds load instead of
// piling up requests.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *resilience.Limiter
	breaker *resilience.Breaker
	retry   fn.RetryOpts
}

// NewClient creates an Ollama summarization client for the given model.
func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
		limiter: resilience.NewLimiter(resilience.LimiterOpts{Rate: 4, Burst: 8}),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Jitter:      true,
		},
	}
}

type generateReq struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResp struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Summarize implements summarize.Summarizer. The min/max token hints are
// folded into the prompt and the max is also passed as num_predict so the
// model stops on budget.
func (c *Client) Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error) {
	prompt := buildPrompt(text, minTokens, maxTokens)

	res := fn.Retry(ctx, c.retry, func(ctx context.Context) fn.Result[string] {
		return resilience.CallResult(c.breaker, ctx, func(ctx context.Context) fn.Result[string] {
			if err := c.limiter.Wait(ctx); err != nil {
				return fn.Err[string](err)
			}
			return fn.FromPair(c.generate(ctx, prompt, maxTokens))
		})
	})
	return res.Unwrap()
}

func (c *Client) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, _ := json.Marshal(generateReq{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"num_predict": maxTokens * 2, // token units differ between models, leave headroom
		},
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("ollama generate: status %d", resp.StatusCode)
	}

	var result generateResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("ollama generate decode: %w", err)
	}

	out := strings.TrimSpace(result.Response)
	if out == "" {
		return "", fmt.Errorf("ollama generate: empty response")
	}
	return out, nil
}

func buildPrompt(text string, minTokens, maxTokens int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following terms and conditions excerpt in plain language, in %d to %d words. Keep obligations, fees, data sharing, and termination rules. Reply with the summary only.\n\n", minTokens, maxTokens)
	b.WriteString(text)
	return b.String()
}
