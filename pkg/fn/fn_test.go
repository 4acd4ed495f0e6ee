package fn

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult_OkErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok result misreports state")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatalf("unexpected unwrap: %v, %v", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() {
		t.Fatal("Err result reports ok")
	}
	if e.UnwrapOr(7) != 7 {
		t.Fatal("UnwrapOr did not fall back")
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(1, nil); r.IsErr() {
		t.Fatal("expected ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Fatal("expected err")
	}
}

func TestCollect_FirstError(t *testing.T) {
	boom := errors.New("boom")
	r := Collect([]Result[int]{Ok(1), Err[int](boom), Ok(3)})
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Fatalf("expected first error, got %v", err)
	}
}

func TestParMap_PreservesOrder(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	out := ParMap(items, 2, func(v int) int {
		time.Sleep(time.Duration(v) * time.Millisecond)
		return v * 10
	})
	for i, v := range out {
		if v != items[i]*10 {
			t.Fatalf("order broken at %d: %v", i, out)
		}
	}
}

func TestParMapResult_PerSlotErrors(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}
	out := ParMapResult(context.Background(), items, 3, func(_ context.Context, v int) Result[string] {
		if v == 2 {
			return Errf[string]("bad item %d", v)
		}
		return Ok(fmt.Sprintf("v%d", v))
	})
	if len(out) != 5 {
		t.Fatalf("expected 5 results, got %d", len(out))
	}
	for i, r := range out {
		if i == 2 {
			if r.IsOk() {
				t.Error("slot 2 should be an error")
			}
			continue
		}
		if v, _ := r.Unwrap(); v != fmt.Sprintf("v%d", i) {
			t.Errorf("slot %d: got %q", i, v)
		}
	}
}

func TestParMapResult_BoundedConcurrency(t *testing.T) {
	var cur, max atomic.Int32
	ParMapResult(context.Background(), make([]int, 50), 4, func(_ context.Context, _ int) Result[int] {
		n := cur.Add(1)
		for {
			m := max.Load()
			if n <= m || max.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		cur.Add(-1)
		return Ok(0)
	})
	if max.Load() > 4 {
		t.Fatalf("concurrency exceeded bound: %d", max.Load())
	}
}

func TestParMapResult_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := ParMapResult(ctx, []int{1, 2, 3}, 1, func(_ context.Context, v int) Result[int] {
		return Ok(v)
	})
	for i, r := range out {
		if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
			t.Errorf("slot %d: expected context.Canceled, got %v", i, err)
		}
	}
}

func TestThen_ShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	first := func(_ context.Context, n int) Result[int] { return Err[int](boom) }
	second := func(_ context.Context, n int) Result[int] {
		t.Fatal("second stage must not run")
		return Ok(n)
	}
	r := Then(first, second)(context.Background(), 1)
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestMapStage_TapStage(t *testing.T) {
	double := MapStage(func(n int) int { return n * 2 })
	var seen int
	tap := TapStage(func(_ context.Context, n int) { seen = n })
	r := Then(double, tap)(context.Background(), 21)
	if v, _ := r.Unwrap(); v != 42 || seen != 42 {
		t.Fatalf("got %d, tap saw %d", v, seen)
	}
}

func TestTracedStage_PassesThrough(t *testing.T) {
	stage := TracedStage("test", MapStage(func(n int) int { return n + 1 }))
	if v, _ := stage(context.Background(), 1).Unwrap(); v != 2 {
		t.Fatalf("got %d", v)
	}
	failing := TracedStage("fail", func(_ context.Context, _ int) Result[int] {
		return Errf[int]("nope")
	})
	if failing(context.Background(), 1).IsOk() {
		t.Fatal("expected error to pass through")
	}
}

func TestRetry_EventualSuccess(t *testing.T) {
	calls := 0
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	r := Retry(context.Background(), opts, func(_ context.Context) Result[int] {
		calls++
		if calls < 3 {
			return Errf[int]("transient")
		}
		return Ok(9)
	})
	if v, _ := r.Unwrap(); v != 9 || calls != 3 {
		t.Fatalf("got %d after %d calls", v, calls)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	r := Retry(context.Background(), opts, func(_ context.Context) Result[int] {
		return Errf[int]("always")
	})
	if r.IsOk() {
		t.Fatal("expected failure after exhausting attempts")
	}
}

func TestSliceHelpers(t *testing.T) {
	in := []int{1, 2, 3, 4}
	if got := Map(in, func(n int) int { return n * n }); got[3] != 16 {
		t.Errorf("Map: %v", got)
	}
	if got := Filter(in, func(n int) bool { return n%2 == 0 }); len(got) != 2 {
		t.Errorf("Filter: %v", got)
	}
	got := FilterMap(in, func(n int) (string, bool) {
		return fmt.Sprintf("n%d", n), n > 2
	})
	if len(got) != 2 || got[0] != "n3" {
		t.Errorf("FilterMap: %v", got)
	}
	if got := Unique([]string{"a", "b", "a", "c", "b"}); len(got) != 3 || got[0] != "a" {
		t.Errorf("Unique: %v", got)
	}
}
