package interaction

import (
	"fmt"
	"sort"

	"github.com/example/dicebot/internal/core/token"
)

// Kind is the capability interface every command kind implements. All methods
// are pure and total: any configuration that passed Validate and any button
// value yield a defined result.
type Kind interface {
	// Name is the command kind carried in tokens.
	Name() CommandKind

	// Schema describes the state fields carried inline in tokens.
	Schema() token.Schema

	// Validate checks a configuration before it is persisted.
	Validate(cfg Configuration) error

	// InitialMessage is the fresh button message for cfg.
	InitialMessage(cfg Configuration) Message

	// ApplyButton advances prior by one click. A click that cannot advance
	// the flow returns prior unchanged.
	ApplyButton(cfg Configuration, prior State, buttonValue, actorID string) State

	// IsTerminal reports whether s completes the flow.
	IsTerminal(cfg Configuration, s State) bool

	// RenderAnswer returns the roll to post for s, or nil.
	RenderAnswer(cfg Configuration, s State) *Answer

	// ContentOverride replaces the clicked message's content, if ok.
	ContentOverride(cfg Configuration, s State) (content string, ok bool)

	// ComponentsOverride replaces the clicked message's buttons, if ok.
	ComponentsOverride(cfg Configuration, s State) (rows []Row, ok bool)

	// WantsReplacement reports whether s should be followed by a fresh button message.
	WantsReplacement(cfg Configuration, s State) bool
}

// FallbackProvider is implemented by kinds that can build a configuration
// from a button value alone, for messages posted without a stored configuration.
type FallbackProvider interface {
	Fallback(buttonValue string) (Configuration, bool)
}

// Registry maps command kinds to their implementation. It is built once at
// startup and passed by reference.
type Registry struct {
	kinds map[CommandKind]Kind
}

// NewRegistry creates a registry. Duplicate kind names are rejected.
func NewRegistry(kinds ...Kind) (*Registry, error) {
	r := &Registry{kinds: make(map[CommandKind]Kind, len(kinds))}
	for _, k := range kinds {
		if _, exists := r.kinds[k.Name()]; exists {
			return nil, fmt.Errorf("command kind %q registered twice", k.Name())
		}
		r.kinds[k.Name()] = k
	}
	return r, nil
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (Kind, bool) {
	k, ok := r.kinds[CommandKind(name)]
	return k, ok
}

// Names returns the registered kind names, sorted.
func (r *Registry) Names() []CommandKind {
	names := make([]CommandKind, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
