package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail() (interface{}, error) { return nil, errBoom }
func ok() (interface{}, error)   { return "ok", nil }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	cb := New(2, 1, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: expected errBoom, got %v", i+1, err)
		}
	}
	if cb.State() != Open {
		t.Fatalf("expected Open, got %s", cb.State())
	}

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("request must not run while the circuit is open")
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(2, 1, time.Minute)

	cb.Execute(fail)
	cb.Execute(ok)
	cb.Execute(fail)

	if cb.State() != Closed {
		t.Errorf("expected Closed, got %s", cb.State())
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	var transitions []string
	cb := New(1, 2, 30*time.Second,
		WithClock(clock.Now),
		WithStateChange(func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)

	cb.Execute(fail)
	clock.Advance(31 * time.Second)

	if cb.State() != HalfOpen {
		t.Fatalf("expected Half-Open after timeout, got %s", cb.State())
	}
	if _, err := cb.Execute(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.State() != HalfOpen {
		t.Fatalf("one success is below the threshold, got %s", cb.State())
	}
	cb.Execute(ok)
	if cb.State() != Closed {
		t.Fatalf("expected Closed, got %s", cb.State())
	}

	want := []string{"Closed->Open", "Open->Half-Open", "Half-Open->Closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	cb := New(1, 1, 10*time.Second, WithClock(clock.Now))

	cb.Execute(fail)
	clock.Advance(11 * time.Second)
	cb.Execute(fail)

	if cb.State() != Open {
		t.Errorf("expected Open, got %s", cb.State())
	}
}
