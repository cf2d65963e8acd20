// Package throttle computes how long to hold back a replacement message so
// rapid clicking does not flood a channel.
package throttle

import "time"

// DefaultMinInterval is the minimum spacing between a message and its replacement.
const DefaultMinInterval = time.Second

// DelayBefore returns max(0, minInterval - (now - prior)). A zero prior time,
// or a prior time after now (clock skew), yields no delay.
func DelayBefore(prior, now time.Time, minInterval time.Duration) time.Duration {
	if prior.IsZero() || prior.After(now) || minInterval <= 0 {
		return 0
	}
	remaining := minInterval - now.Sub(prior)
	if remaining < 0 {
		return 0
	}
	return remaining
}
