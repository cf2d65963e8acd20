// Package ids provides the identifier primitives used by the interaction engine.
package ids

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// fallbackNamespace scopes the deterministic configuration ids built for
// messages that were posted without a stored configuration.
var fallbackNamespace = uuid.MustParse("6f1d3c1e-2a54-4b8e-9a0c-5d7f1e2b3c4d")

// NewConfigID returns a fresh random configuration id.
func NewConfigID() string {
	return uuid.NewString()
}

// FallbackConfigID derives a stable configuration id from the message a
// fallback configuration is built for. Racing clicks on the same message
// derive the same id.
func FallbackConfigID(kind, channelID, messageID string) string {
	return uuid.NewSHA1(fallbackNamespace, []byte(strings.Join([]string{kind, channelID, messageID}, "/"))).String()
}

// IsConfigID reports whether s parses as a configuration id.
func IsConfigID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

// NewInteractionID returns a ULID string (26 chars) used to correlate the
// log lines and metrics of a single click.
func NewInteractionID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
