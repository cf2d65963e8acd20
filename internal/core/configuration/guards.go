// Package configuration contains the pure rules for creating and deleting
// command configurations.
// This is part of the Functional Core - no I/O, only pure functions.
package configuration

import "fmt"

// CreateContext provides context for configuration creation guards.
// Populated by the caller after looking up the kind.
type CreateContext struct {
	Kind            string
	KindRegistered  bool
	ChannelID       string
	TargetChannelID string
	FormatValid     bool
	LocaleValid     bool
	Post            bool
	CanPost         bool
}

// DeleteContext provides context for configuration deletion guards.
// Populated by the caller with the pre-fetched live message count.
type DeleteContext struct {
	ConfigID       string
	ActiveMessages int
	ForceDelete    bool
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Field   string // offending field (populated when not allowed)
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func deny(field, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// CanCreateConfiguration evaluates whether a configuration may be persisted.
// The kind's own body validation runs after this guard passes.
func CanCreateConfiguration(ctx CreateContext) GuardResult {
	if !ctx.KindRegistered {
		return deny("kind", "unknown command kind %q", ctx.Kind)
	}
	if ctx.ChannelID == "" {
		return deny("channel", "a channel is required")
	}
	if ctx.TargetChannelID == ctx.ChannelID {
		return deny("target_channel", "target channel %s is the button channel; leave it empty instead", ctx.TargetChannelID)
	}
	if !ctx.FormatValid {
		return deny("answer_format", "answer format must be one of full, compact or minimal")
	}
	if !ctx.LocaleValid {
		return deny("locale", "locale is not supported")
	}
	if ctx.Post && !ctx.CanPost {
		return deny("post", "posting requires a Discord connection (set DICEBOT_DISCORD_TOKEN)")
	}
	return GuardResult{Allowed: true}
}

// CanDeleteConfiguration evaluates whether a configuration can be deleted.
// Rule: configurations with live button messages require --force, since those
// buttons stop working.
func CanDeleteConfiguration(ctx DeleteContext) GuardResult {
	if ctx.ActiveMessages > 0 && !ctx.ForceDelete {
		return deny("force", "Configuration %s has %d live button messages. Use --force to delete anyway", ctx.ConfigID, ctx.ActiveMessages)
	}
	return GuardResult{Allowed: true}
}
