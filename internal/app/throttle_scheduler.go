package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/example/dicebot/internal/core/throttle"
)

// ThrottleScheduler holds back replacement messages so rapid clicking does
// not flood a channel. The minimum interval can be changed while running.
type ThrottleScheduler struct {
	minInterval atomic.Int64
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewThrottleScheduler creates a scheduler with the given minimum interval.
func NewThrottleScheduler(minInterval time.Duration) *ThrottleScheduler {
	s := &ThrottleScheduler{now: time.Now, sleep: sleepContext}
	s.SetMinInterval(minInterval)
	return s
}

// MinInterval returns the current minimum spacing between a message and its replacement.
func (s *ThrottleScheduler) MinInterval() time.Duration {
	return time.Duration(s.minInterval.Load())
}

// SetMinInterval changes the minimum interval. Negative values disable throttling.
func (s *ThrottleScheduler) SetMinInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.minInterval.Store(int64(d))
}

// Wait blocks until a replacement for a message created at prior may be sent.
// It returns the delay it applied, or ctx's error if ctx ends first.
func (s *ThrottleScheduler) Wait(ctx context.Context, prior time.Time) (time.Duration, error) {
	delay := throttle.DelayBefore(prior, s.now(), s.MinInterval())
	if delay == 0 {
		return 0, nil
	}
	return delay, s.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
