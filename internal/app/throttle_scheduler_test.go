package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestThrottle(minInterval time.Duration, now time.Time) (*ThrottleScheduler, *[]time.Duration) {
	var slept []time.Duration
	s := NewThrottleScheduler(minInterval)
	s.now = func() time.Time { return now }
	s.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return s, &slept
}

func TestThrottleScheduler_Wait(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		prior     time.Time
		wantDelay time.Duration
	}{
		{"prior 300ms ago", now.Add(-300 * time.Millisecond), 700 * time.Millisecond},
		{"prior long ago", now.Add(-time.Minute), 0},
		{"prior unknown", time.Time{}, 0},
		{"prior in the future", now.Add(time.Second), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, slept := newTestThrottle(time.Second, now)

			delay, err := s.Wait(context.Background(), tt.prior)
			if err != nil {
				t.Fatalf("Wait failed: %v", err)
			}
			if delay != tt.wantDelay {
				t.Errorf("expected delay %v, got %v", tt.wantDelay, delay)
			}
			if tt.wantDelay == 0 && len(*slept) != 0 {
				t.Errorf("expected no sleep, got %v", *slept)
			}
			if tt.wantDelay > 0 && (len(*slept) != 1 || (*slept)[0] != tt.wantDelay) {
				t.Errorf("expected one sleep of %v, got %v", tt.wantDelay, *slept)
			}
		})
	}
}

func TestThrottleScheduler_SetMinInterval(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s, _ := newTestThrottle(time.Second, now)

	s.SetMinInterval(3 * time.Second)
	if got := s.MinInterval(); got != 3*time.Second {
		t.Errorf("expected 3s, got %v", got)
	}
	delay, _ := s.Wait(context.Background(), now.Add(-time.Second))
	if delay != 2*time.Second {
		t.Errorf("expected 2s delay after tuning, got %v", delay)
	}

	s.SetMinInterval(-time.Second)
	if got := s.MinInterval(); got != 0 {
		t.Errorf("expected negative interval to clamp to 0, got %v", got)
	}
}

func TestThrottleScheduler_WaitCancelled(t *testing.T) {
	s := NewThrottleScheduler(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Wait(ctx, time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSleepContext_Elapses(t *testing.T) {
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("expected timer to elapse, got %v", err)
	}
}
