package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterRender(t *testing.T) {
	reg := New()
	c := reg.Counter("requests_total", "Total requests")
	c.Inc()
	c.Add(2)

	out := reg.Render()
	if !strings.Contains(out, "# TYPE requests_total counter") {
		t.Errorf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, "requests_total 3") {
		t.Errorf("missing value line:\n%s", out)
	}
}

func TestCounterWithLabels(t *testing.T) {
	reg := New()
	reg.Counter(WithLabels("hits_total", "route", "/api/summarize"), "Hits").Inc()
	reg.Counter(WithLabels("hits_total", "route", "/api/health"), "Hits").Add(5)

	out := reg.Render()
	if !strings.Contains(out, `hits_total{route="/api/health"} 5`) {
		t.Errorf("missing labeled line:\n%s", out)
	}
	if !strings.Contains(out, `hits_total{route="/api/summarize"} 1`) {
		t.Errorf("missing labeled line:\n%s", out)
	}
	if strings.Count(out, "# TYPE hits_total counter") != 1 {
		t.Errorf("TYPE line should appear once:\n%s", out)
	}
}

func TestGauge(t *testing.T) {
	reg := New()
	g := reg.Gauge("inflight", "In-flight requests")
	g.Inc()
	g.Inc()
	g.Dec()
	if g.Value() != 1 {
		t.Fatalf("expected 1, got %d", g.Value())
	}
	g.Set(42)
	if !strings.Contains(reg.Render(), "inflight 42") {
		t.Error("gauge value missing from render")
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	reg := New()
	h := reg.Histogram("latency_seconds", "Latency", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)
	h.Observe(50) // above all buckets, only +Inf

	out := reg.Render()
	for _, want := range []string{
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 2`,
		`latency_seconds_bucket{le="10"} 3`,
		`latency_seconds_bucket{le="+Inf"} 4`,
		`latency_seconds_count 4`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHandlerContentType(t *testing.T) {
	reg := New()
	reg.Counter("x_total", "").Inc()

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "x_total 1") {
		t.Fatalf("body missing metric:\n%s", rec.Body.String())
	}
}

func TestPipelineObserveRun(t *testing.T) {
	reg := New()
	p := NewPipeline(reg)
	p.Requests.Inc()
	p.ObserveRun(2, 7, 1, 0.3)

	out := reg.Render()
	for _, want := range []string{
		"condense_requests_total 1",
		"condense_chunks_total 7",
		"condense_chunk_failures_total 1",
		"condense_passes_count 1",
		"condense_request_duration_seconds_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
