//go:build integration

package natsutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tncscanner/condense/engine/jobs"
)

func natsURL() string {
	if v := os.Getenv("NATS_URL"); v != "" {
		return v
	}
	return nats.DefaultURL
}

func connectNATS(t *testing.T) *nats.Conn {
	t.Helper()
	nc, err := nats.Connect(natsURL())
	if err != nil {
		t.Fatalf("nats connect: %v", err)
	}
	t.Cleanup(func() { nc.Close() })
	return nc
}

func TestNATS_JobRoundTrip(t *testing.T) {
	nc := connectNATS(t)

	ch := make(chan jobs.SummarizeJob, 1)
	sub, err := QueueSubscribe(nc, "integ.jobs", jobs.WorkerQueue, func(ctx context.Context, j jobs.SummarizeJob) {
		ch <- j
	})
	if err != nil {
		t.Fatalf("QueueSubscribe: %v", err)
	}
	defer sub.Unsubscribe()

	job := jobs.NewSummarizeJob("Some terms of service text.", "")
	if err := Publish(context.Background(), nc, "integ.jobs", job); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-ch:
		if got.ID != job.ID || got.Text != job.Text {
			t.Fatalf("round trip mismatch: %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for job")
	}
}

func TestNATS_MalformedDropped(t *testing.T) {
	nc := connectNATS(t)

	ch := make(chan jobs.SummarizeJob, 1)
	sub, err := Subscribe(nc, "integ.malformed", func(ctx context.Context, j jobs.SummarizeJob) {
		ch <- j
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	if err := nc.Publish("integ.malformed", []byte("{not json")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-ch:
		t.Fatalf("malformed message should be dropped, got %+v", got)
	case <-time.After(500 * time.Millisecond):
	}
}
