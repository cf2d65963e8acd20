package throttle

import (
	"testing"
	"time"
)

func TestDelayBefore(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		prior       time.Time
		minInterval time.Duration
		want        time.Duration
	}{
		{name: "recent prior waits the remainder", prior: now.Add(-200 * time.Millisecond), minInterval: time.Second, want: 800 * time.Millisecond},
		{name: "old prior does not wait", prior: now.Add(-2000 * time.Millisecond), minInterval: time.Second, want: 0},
		{name: "exactly at interval", prior: now.Add(-time.Second), minInterval: time.Second, want: 0},
		{name: "missing prior", prior: time.Time{}, minInterval: time.Second, want: 0},
		{name: "prior in the future", prior: now.Add(5 * time.Second), minInterval: time.Second, want: 0},
		{name: "throttle disabled", prior: now.Add(-10 * time.Millisecond), minInterval: 0, want: 0},
		{name: "same instant", prior: now, minInterval: DefaultMinInterval, want: DefaultMinInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DelayBefore(tt.prior, now, tt.minInterval); got != tt.want {
				t.Errorf("DelayBefore() = %v, want %v", got, tt.want)
			}
		})
	}
}
