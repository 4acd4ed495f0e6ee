package jobs

import "testing"

func TestNewSummarizeJobUniqueIDs(t *testing.T) {
	a := NewSummarizeJob("text", "")
	b := NewSummarizeJob("", "https://example.com/terms")

	if a.ID == "" || b.ID == "" {
		t.Fatal("expected generated IDs")
	}
	if a.ID == b.ID {
		t.Fatal("IDs must be unique")
	}
	if a.Text != "text" || b.URL != "https://example.com/terms" {
		t.Fatalf("fields not carried: %+v %+v", a, b)
	}
}
