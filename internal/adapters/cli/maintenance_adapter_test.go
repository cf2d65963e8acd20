package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/dicebot/internal/ports/primary"
)

// mockMaintenanceService implements primary.MaintenanceService for testing
type mockMaintenanceService struct {
	result *primary.PurgeResult
	err    error
}

func (m *mockMaintenanceService) PurgeTombstones(ctx context.Context) (*primary.PurgeResult, error) {
	return m.result, m.err
}

func (m *mockMaintenanceService) RunPurgeLoop(ctx context.Context, interval time.Duration) {}

func TestMaintenanceAdapter_Purge(t *testing.T) {
	var out bytes.Buffer
	service := &mockMaintenanceService{result: &primary.PurgeResult{Purged: 3, Cutoff: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}}

	if err := NewMaintenanceAdapter(service, &out).Purge(context.Background()); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Purged 3 tombstoned message records older than 2024-03-01 12:00:00") {
		t.Errorf("unexpected output %q", out.String())
	}

	service.err = errors.New("database is locked")
	if err := NewMaintenanceAdapter(service, &out).Purge(context.Background()); err == nil {
		t.Error("expected purge error to be returned")
	}
}

func TestPrintDecoded(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name string
		raw  string
		want []string
		skip []string
	}{
		{
			name: "inline",
			raw:  "custom_parameter\u001e2\u001e4f3c2a10-8b7e-4d5f-9c1a-2b3d4e5f6a7b\u001ealice",
			want: []string{"Class:   current", "Kind:    custom_parameter", "Button:  2", "Config:  4f3c2a10-8b7e-4d5f-9c1a-2b3d4e5f6a7b", `Fields:  ["alice"]`},
		},
		{
			name: "thin",
			raw:  "quick_roll\u001e1d20\u001eEMPTY",
			want: []string{"Class:   current", "Config:  (none)", "reference token"},
		},
		{
			name: "legacy",
			raw:  "custom_dice,1d6",
			want: []string{"Class:   legacy", "Kind:    custom_dice"},
			skip: []string{"Button:"},
		},
		{
			name: "empty",
			raw:  "",
			want: []string{"Class:   unrecognized", "Length:  0/100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			PrintDecoded(&out, tt.raw)

			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected output to contain %q, got %q", want, out.String())
				}
			}
			for _, skip := range tt.skip {
				if strings.Contains(out.String(), skip) {
					t.Errorf("expected output not to contain %q, got %q", skip, out.String())
				}
			}
		})
	}
}
