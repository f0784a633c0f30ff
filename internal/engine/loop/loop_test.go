package loop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunStopsOnErrStop(t *testing.T) {
	calls := 0
	stats, err := Run(context.Background(), 0, func(context.Context) error {
		calls++
		if calls == 5 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 5 || stats.Frames != 4 {
		t.Errorf("calls = %d, frames = %d; want 5, 4", calls, stats.Frames)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Run(ctx, 0, func(context.Context) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRunAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := Run(ctx, 60, func(context.Context) error {
		t.Error("fn should not run after cancellation")
		return nil
	})
	if err != nil || stats.Frames != 0 {
		t.Errorf("stats = %+v, err = %v", stats, err)
	}
}

func TestRunWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), 0, func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestRunHonoursFPSLimit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	stats, err := Run(ctx, 50, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 50 fps for 200ms is ~10 frames; allow slack for slow machines.
	if stats.Frames < 2 || stats.Frames > 12 {
		t.Errorf("frames = %d, want about 10", stats.Frames)
	}
}
