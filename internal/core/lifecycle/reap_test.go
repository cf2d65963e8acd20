package lifecycle

import (
	"reflect"
	"testing"
	"time"
)

func TestSelectCandidates(t *testing.T) {
	inFlight := map[string]bool{"m4": true}

	tests := []struct {
		name    string
		active  []string
		keep    string
		exclude string
		want    []string
	}{
		{
			name:    "drops keep and exclude",
			active:  []string{"m1", "m2", "m3"},
			keep:    "m3",
			exclude: "m1",
			want:    []string{"m2"},
		},
		{
			name:   "drops in-flight and duplicates",
			active: []string{"m2", "m4", "m2", ""},
			keep:   "m9",
			want:   []string{"m2"},
		},
		{
			name:   "nothing to reap",
			active: []string{"m3"},
			keep:   "m3",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectCandidates(tt.active, tt.keep, tt.exclude, func(id string) bool { return inFlight[id] })
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectCandidates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state LiveState
		want  Action
	}{
		{name: "live unpinned message is deleted", state: LiveState{Exists: true, Deletable: true, CreatedAt: created}, want: ActionDelete},
		{name: "externally deleted message is tombstoned", state: LiveState{Exists: false}, want: ActionTombstone},
		{name: "pinned message is left", state: LiveState{Exists: true, Pinned: true, Deletable: true, CreatedAt: created}, want: ActionLeave},
		{name: "undeletable message type is left", state: LiveState{Exists: true, CreatedAt: created}, want: ActionLeave},
		{name: "unknown creation time is left", state: LiveState{Exists: true, Deletable: true}, want: ActionLeave},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.state); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanReapKeepsOrder(t *testing.T) {
	created := time.Now()
	got := PlanReap([]LiveState{
		{MessageID: "a", Exists: true, Deletable: true, CreatedAt: created},
		{MessageID: "b"},
		{MessageID: "c", Exists: true, Pinned: true, Deletable: true, CreatedAt: created},
	})
	want := []Decision{
		{MessageID: "a", Action: ActionDelete},
		{MessageID: "b", Action: ActionTombstone},
		{MessageID: "c", Action: ActionLeave},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PlanReap() = %v, want %v", got, want)
	}
}
