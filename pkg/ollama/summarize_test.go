package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "test-model")
	// Fast retries keep the failure tests quick.
	c.retry.InitialWait = time.Millisecond
	c.retry.MaxWait = 5 * time.Millisecond
	return c
}

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if !strings.Contains(req.Prompt, "30 to 150 words") {
			t.Errorf("token hints missing from prompt: %q", req.Prompt)
		}
		if !strings.Contains(req.Prompt, "the document body") {
			t.Errorf("document text missing from prompt")
		}
		json.NewEncoder(w).Encode(generateResp{Response: "  a short summary  ", Done: true})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), "the document body", 30, 150)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "a short summary" {
		t.Errorf("got %q", got)
	}
}

func TestSummarizeRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(generateResp{Response: "recovered", Done: true})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), "text", 30, 150)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "recovered" {
		t.Errorf("got %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestSummarizePersistentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Summarize(context.Background(), "text", 30, 150); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestSummarizeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResp{Response: "   ", Done: true})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Summarize(context.Background(), "text", 30, 150); err == nil {
		t.Fatal("expected error for empty model output")
	}
}

func TestSummarizeCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := newTestClient(srv.URL).Summarize(ctx, "text", 30, 150); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
