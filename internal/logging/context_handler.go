package logging

import (
	"context"
	"log/slog"

	"github.com/example/dicebot/internal/ctxutil"
)

// ContextHandler adds the interaction id and actor carried by the context to
// every record logged through one of the *Context methods.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: next}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := ctxutil.InteractionIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("interaction_id", id))
	}
	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		r.AddAttrs(slog.String("actor", actor))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
