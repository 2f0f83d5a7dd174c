package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func ms(n int64) time.Time { return time.UnixMilli(n) }

func testLimiter() *Limiter {
	return New(Config{Window: 60 * time.Second, MaxRequests: 3})
}

func TestCheckAndRecord_Scenarios(t *testing.T) {
	t.Parallel()
	l := testLimiter()

	steps := []struct {
		name string
		key  string
		now  int64
		want Decision
	}{
		{"first A", "A", 0, Admitted},
		{"second A", "A", 0, Admitted},
		{"third A", "A", 0, Admitted},
		{"fourth A over limit", "A", 0, Rejected},
		{"A just before rollover", "A", 59999, Rejected},
		{"B independent", "B", 0, Admitted},
		{"A at rollover", "A", 60000, Admitted},
	}
	for _, step := range steps {
		if got := l.CheckAndRecord(step.key, ms(step.now)); got != step.want {
			t.Fatalf("%s: CheckAndRecord(%q, %d) = %v, want %v", step.name, step.key, step.now, got, step.want)
		}
	}

	rec, ok := l.Snapshot("A")
	if !ok {
		t.Fatal("expected record for A")
	}
	if rec.Count != 1 {
		t.Errorf("Count after rollover = %d, want 1", rec.Count)
	}
	if !rec.WindowResetAt.Equal(ms(120000)) {
		t.Errorf("WindowResetAt = %d, want 120000", rec.WindowResetAt.UnixMilli())
	}
}

func TestCheckAndRecord_IndependentKeys(t *testing.T) {
	t.Parallel()
	l := testLimiter()

	for i := 0; i < 3; i++ {
		l.CheckAndRecord("A", ms(0))
	}
	if got := l.CheckAndRecord("B", ms(0)); got != Admitted {
		t.Errorf("B = %v, want admitted", got)
	}
	rec, _ := l.Snapshot("A")
	if rec.Count != 3 {
		t.Errorf("A count = %d, want 3", rec.Count)
	}
	rec, _ = l.Snapshot("B")
	if rec.Count != 1 {
		t.Errorf("B count = %d, want 1", rec.Count)
	}
}

func TestCheckAndRecord_RejectedDoesNotIncrement(t *testing.T) {
	t.Parallel()
	l := testLimiter()

	for i := 0; i < 3; i++ {
		l.CheckAndRecord("A", ms(0))
	}
	for i := 0; i < 10; i++ {
		if got := l.CheckAndRecord("A", ms(int64(i*1000))); got != Rejected {
			t.Fatalf("call %d after exhaustion = %v, want rejected", i, got)
		}
	}
	rec, _ := l.Snapshot("A")
	if rec.Count != 3 {
		t.Errorf("Count = %d, want 3", rec.Count)
	}
	if !rec.WindowResetAt.Equal(ms(60000)) {
		t.Errorf("WindowResetAt moved to %d", rec.WindowResetAt.UnixMilli())
	}
}

func TestCheckAndRecord_FreshBurstAfterRollover(t *testing.T) {
	t.Parallel()
	l := testLimiter()

	for i := 0; i < 4; i++ {
		l.CheckAndRecord("A", ms(0))
	}
	for i := 0; i < 3; i++ {
		if got := l.CheckAndRecord("A", ms(61000)); got != Admitted {
			t.Fatalf("burst call %d = %v, want admitted", i, got)
		}
	}
	if got := l.CheckAndRecord("A", ms(61000)); got != Rejected {
		t.Errorf("call past fresh burst = %v, want rejected", got)
	}
}

func TestCheckAndRecord_WithinLimitAlwaysAdmitted(t *testing.T) {
	t.Parallel()
	for _, limit := range []int{1, 2, 5, 100} {
		l := New(Config{Window: time.Minute, MaxRequests: limit})
		for i := 0; i < limit; i++ {
			if got := l.CheckAndRecord("k", ms(int64(i))); got != Admitted {
				t.Fatalf("limit=%d call %d = %v, want admitted", limit, i+1, got)
			}
		}
		if got := l.CheckAndRecord("k", ms(int64(limit))); got != Rejected {
			t.Errorf("limit=%d call %d = %v, want rejected", limit, limit+1, got)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	l := New(Config{})
	cfg := l.Config()
	if cfg.Window != DefaultWindow {
		t.Errorf("Window = %v, want %v", cfg.Window, DefaultWindow)
	}
	if cfg.MaxRequests != DefaultMaxRequests {
		t.Errorf("MaxRequests = %d, want %d", cfg.MaxRequests, DefaultMaxRequests)
	}
}

func TestAllow_UsesClock(t *testing.T) {
	t.Parallel()
	var now atomic.Int64
	l := New(Config{Window: time.Second, MaxRequests: 1}, WithClock(func() time.Time {
		return ms(now.Load())
	}))

	if got := l.Allow("k"); got != Admitted {
		t.Fatalf("first Allow = %v", got)
	}
	if got := l.Allow("k"); got != Rejected {
		t.Fatalf("second Allow = %v", got)
	}
	now.Store(1000)
	if got := l.Allow("k"); got != Admitted {
		t.Errorf("Allow after window = %v, want admitted", got)
	}
}

func TestSetConfig_KeepsOpenWindow(t *testing.T) {
	t.Parallel()
	l := testLimiter()
	l.CheckAndRecord("A", ms(0))

	l.SetConfig(Config{Window: 10 * time.Second, MaxRequests: 1})

	rec, _ := l.Snapshot("A")
	if !rec.WindowResetAt.Equal(ms(60000)) {
		t.Errorf("WindowResetAt = %d, want 60000", rec.WindowResetAt.UnixMilli())
	}
	if got := l.CheckAndRecord("A", ms(20000)); got != Rejected {
		t.Errorf("after lowering max = %v, want rejected", got)
	}
	if got := l.CheckAndRecord("A", ms(60000)); got != Admitted {
		t.Errorf("at old reset = %v, want admitted", got)
	}
	rec, _ = l.Snapshot("A")
	if !rec.WindowResetAt.Equal(ms(70000)) {
		t.Errorf("new window reset = %d, want 70000", rec.WindowResetAt.UnixMilli())
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()
	l := testLimiter()
	l.CheckAndRecord("old", ms(0))
	l.CheckAndRecord("new", ms(30000))

	if removed := l.Sweep(ms(59999)); removed != 0 {
		t.Errorf("Sweep before expiry removed %d", removed)
	}
	if removed := l.Sweep(ms(60000)); removed != 1 {
		t.Errorf("Sweep at expiry removed %d, want 1", removed)
	}
	if _, ok := l.Snapshot("old"); ok {
		t.Error("expired record still present")
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
	if got := l.CheckAndRecord("old", ms(60001)); got != Admitted {
		t.Errorf("swept key = %v, want admitted", got)
	}
}

func TestCheckAndRecord_Concurrent(t *testing.T) {
	t.Parallel()
	const limit = 50
	l := New(Config{Window: time.Hour, MaxRequests: limit})
	now := ms(0)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.CheckAndRecord("shared", now) == Admitted {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if admitted.Load() != limit {
		t.Errorf("admitted = %d, want %d", admitted.Load(), limit)
	}
}

func TestDecisionString(t *testing.T) {
	t.Parallel()
	if Admitted.String() != "admitted" || Rejected.String() != "rejected" {
		t.Errorf("unexpected names %q %q", Admitted, Rejected)
	}
}

func TestCheck_ReturnsRecord(t *testing.T) {
	t.Parallel()
	l := testLimiter()

	d, rec, limit := l.Check("A", ms(1000))
	if d != Admitted || rec.Count != 1 || !rec.WindowResetAt.Equal(ms(61000)) || limit != 3 {
		t.Errorf("first Check = %v %+v limit=%d", d, rec, limit)
	}
	l.Check("A", ms(1000))
	l.Check("A", ms(1000))
	d, rec, limit = l.Check("A", ms(2000))
	if d != Rejected || rec.Count != 3 || rec.Key != "A" || limit != 3 {
		t.Errorf("exhausted Check = %v %+v limit=%d", d, rec, limit)
	}
}

func TestCheck_ReportsLimitJudgedAgainst(t *testing.T) {
	t.Parallel()
	l := testLimiter()
	l.CheckAndRecord("A", ms(0))

	l.SetConfig(Config{Window: time.Minute, MaxRequests: 10})
	d, rec, limit := l.Check("A", ms(1000))
	if d != Admitted || rec.Count != 2 || limit != 10 {
		t.Errorf("after raising = %v count=%d limit=%d, want admitted 2 10", d, rec.Count, limit)
	}
}

func TestSetConfig_ClampsCountToLoweredMax(t *testing.T) {
	t.Parallel()
	l := New(Config{Window: time.Minute, MaxRequests: 5})
	for i := 0; i < 5; i++ {
		l.CheckAndRecord("A", ms(0))
	}
	l.CheckAndRecord("B", ms(0))

	l.SetConfig(Config{Window: time.Minute, MaxRequests: 2})

	if rec, _ := l.Snapshot("A"); rec.Count != 2 || !rec.WindowResetAt.Equal(ms(60000)) {
		t.Errorf("A = %+v, want count 2 with window kept", rec)
	}
	if rec, _ := l.Snapshot("B"); rec.Count != 1 {
		t.Errorf("B count = %d, want 1 untouched", rec.Count)
	}
	d, rec, limit := l.Check("A", ms(1000))
	if d != Rejected || rec.Count != 2 || limit != 2 {
		t.Errorf("A after lowering = %v count=%d limit=%d, want rejected 2 2", d, rec.Count, limit)
	}
}
