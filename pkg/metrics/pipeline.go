package metrics

// Pipeline bundles the metrics the summarization service reports. All
// fields are registered up front so /metrics shows them at zero before the
// first request.
type Pipeline struct {
	Requests      *Counter
	RequestErrors *Counter
	ChunksTotal   *Counter
	ChunkFailures *Counter
	Passes        *Histogram
	Duration      *Histogram
}

// NewPipeline registers the summarization pipeline metrics on reg.
func NewPipeline(reg *Registry) *Pipeline {
	return &Pipeline{
		Requests:      reg.Counter("condense_requests_total", "Summarization requests received"),
		RequestErrors: reg.Counter("condense_request_errors_total", "Summarization requests that returned an error"),
		ChunksTotal:   reg.Counter("condense_chunks_total", "Chunks sent to the summarizer across all passes"),
		ChunkFailures: reg.Counter("condense_chunk_failures_total", "Chunk summarization calls that failed"),
		Passes:        reg.Histogram("condense_passes", "Reduction passes per request", []float64{1, 2, 3, 4, 5}),
		Duration:      reg.Histogram("condense_request_duration_seconds", "End-to-end summarization latency", nil),
	}
}

// ObserveRun records the outcome of one summarization run.
func (p *Pipeline) ObserveRun(passes, chunks, failures int, seconds float64) {
	p.ChunksTotal.Add(int64(chunks))
	p.ChunkFailures.Add(int64(failures))
	p.Passes.Observe(float64(passes))
	p.Duration.Observe(seconds)
}
