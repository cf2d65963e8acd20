package configuration

import "testing"

func validCreate() CreateContext {
	return CreateContext{
		Kind:           "custom_dice",
		KindRegistered: true,
		ChannelID:      "chan-1",
		FormatValid:    true,
		LocaleValid:    true,
	}
}

func TestCanCreateConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*CreateContext)
		wantAllowed bool
		wantField   string
	}{
		{
			name:        "valid configuration",
			mutate:      func(*CreateContext) {},
			wantAllowed: true,
		},
		{
			name:      "unknown kind",
			mutate:    func(c *CreateContext) { c.KindRegistered = false },
			wantField: "kind",
		},
		{
			name:      "missing channel",
			mutate:    func(c *CreateContext) { c.ChannelID = "" },
			wantField: "channel",
		},
		{
			name:      "target channel equals channel",
			mutate:    func(c *CreateContext) { c.TargetChannelID = "chan-1" },
			wantField: "target_channel",
		},
		{
			name:        "other target channel",
			mutate:      func(c *CreateContext) { c.TargetChannelID = "chan-2" },
			wantAllowed: true,
		},
		{
			name:      "invalid format",
			mutate:    func(c *CreateContext) { c.FormatValid = false },
			wantField: "answer_format",
		},
		{
			name:      "invalid locale",
			mutate:    func(c *CreateContext) { c.LocaleValid = false },
			wantField: "locale",
		},
		{
			name:      "post without chat connection",
			mutate:    func(c *CreateContext) { c.Post = true },
			wantField: "post",
		},
		{
			name: "post with chat connection",
			mutate: func(c *CreateContext) {
				c.Post = true
				c.CanPost = true
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := validCreate()
			tt.mutate(&ctx)
			result := CanCreateConfiguration(ctx)

			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanCreateConfiguration() Allowed = %v, want %v (%s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if result.Field != tt.wantField {
				t.Errorf("CanCreateConfiguration() Field = %q, want %q", result.Field, tt.wantField)
			}
			if err := result.Error(); tt.wantAllowed != (err == nil) {
				t.Errorf("Error() = %v, want nil only when allowed", err)
			}
		})
	}
}

func TestCanDeleteConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		ctx         DeleteContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "no live messages",
			ctx:         DeleteContext{ConfigID: "cfg-1"},
			wantAllowed: true,
		},
		{
			name:        "live messages without force",
			ctx:         DeleteContext{ConfigID: "cfg-1", ActiveMessages: 2},
			wantAllowed: false,
			wantReason:  "Configuration cfg-1 has 2 live button messages. Use --force to delete anyway",
		},
		{
			name:        "live messages with force",
			ctx:         DeleteContext{ConfigID: "cfg-1", ActiveMessages: 2, ForceDelete: true},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanDeleteConfiguration(tt.ctx)

			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanDeleteConfiguration() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("CanDeleteConfiguration() Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}
