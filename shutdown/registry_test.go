package shutdown

import (
	"context"
	"errors"
	"testing"
)

func TestRegistryRunsInPriorityOrder(t *testing.T) {
	r := NewRegistry()
	var order []string

	r.Register("storage", 30, func(ctx context.Context) error {
		order = append(order, "storage")
		return nil
	})
	r.Register("server", 10, func(ctx context.Context) error {
		order = append(order, "server")
		return nil
	})
	r.Register("pipelines", 20, func(ctx context.Context) error {
		order = append(order, "pipelines")
		return nil
	})

	errs := r.Shutdown(context.Background())
	if len(errs) != 0 {
		t.Fatalf("Shutdown errors: %v", errs)
	}

	want := []string{"server", "pipelines", "storage"}
	if len(order) != len(want) {
		t.Fatalf("ran %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRegistryCollectsErrors(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	ran := false

	r.Register("failing", 10, func(ctx context.Context) error { return boom })
	r.Register("after", 20, func(ctx context.Context) error {
		ran = true
		return nil
	})

	errs := r.Shutdown(context.Background())
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Fatalf("errs = %v, want [boom]", errs)
	}
	if !ran {
		t.Error("later function did not run after earlier failure")
	}
}

func TestRegistryShutdownIsIdempotent(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("once", 10, func(ctx context.Context) error {
		calls++
		return nil
	})

	r.Shutdown(context.Background())
	if errs := r.Shutdown(context.Background()); errs != nil {
		t.Errorf("second Shutdown = %v, want nil", errs)
	}
	if calls != 1 {
		t.Errorf("function ran %d times, want 1", calls)
	}

	// Registration after close is ignored.
	r.Register("late", 10, func(ctx context.Context) error {
		t.Error("late function should never run")
		return nil
	})
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register("b", 20, func(ctx context.Context) error { return nil })
	r.Register("a", 10, func(ctx context.Context) error { return nil })

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names = %v, want [a b]", names)
	}
}

func TestSignalCounterForceThreshold(t *testing.T) {
	forced := false
	c := NewSignalCounter(2, func() { forced = true })

	if n := c.Increment(); n != 1 {
		t.Errorf("first Increment = %d, want 1", n)
	}
	if forced {
		t.Error("forced after first signal")
	}
	if n := c.Increment(); n != 2 {
		t.Errorf("second Increment = %d, want 2", n)
	}
	if !forced {
		t.Error("not forced after second signal")
	}
	if c.Count() != 2 {
		t.Errorf("Count = %d, want 2", c.Count())
	}
}
