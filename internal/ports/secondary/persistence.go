// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// ConfigRepository defines the secondary port for configuration persistence.
// Configurations are immutable once created.
type ConfigRepository interface {
	// Create persists a new configuration.
	Create(ctx context.Context, cfg *ConfigRecord) error

	// SaveIfAbsent persists a configuration unless one with the same ID exists.
	SaveIfAbsent(ctx context.Context, cfg *ConfigRecord) error

	// GetByID retrieves a configuration by its ID.
	GetByID(ctx context.Context, id string) (*ConfigRecord, error)

	// Delete removes a configuration and the records of its messages.
	Delete(ctx context.Context, id string) error

	// List retrieves configurations matching the given filters.
	List(ctx context.Context, filters ConfigFilters) ([]*ConfigRecord, error)
}

// ConfigRecord represents a configuration as stored in persistence.
type ConfigRecord struct {
	ID               string
	CommandKind      string
	GuildID          string
	ChannelID        string
	SerializedConfig string
	CreatedAt        time.Time
}

// ConfigFilters contains filter options for querying configurations.
type ConfigFilters struct {
	ChannelID   string
	CommandKind string
	Limit       int
}

// MessageRepository defines the secondary port for message record persistence.
// At most one live record exists per (channel, message); deleted records are
// tombstoned before they are purged.
type MessageRepository interface {
	// Create persists a live record. It reports false, without error, when a
	// live record for the same message already exists.
	Create(ctx context.Context, record *MessageRecord) (bool, error)

	// GetByChannelMessage returns the live record of a message, or its newest
	// tombstone when no live record exists.
	GetByChannelMessage(ctx context.Context, channelID, messageID string) (*MessageRecord, error)

	// UpdateState replaces the serialized state of a live record.
	UpdateState(ctx context.Context, channelID, messageID string, state *string) error

	// ListActiveMessageIDs returns the message ids of all live records of a configuration.
	ListActiveMessageIDs(ctx context.Context, configID string) ([]string, error)

	// MarkDeleted tombstones the live record of a message. Tombstoning twice is a no-op.
	MarkDeleted(ctx context.Context, channelID, messageID string, at time.Time) error

	// PurgeDeleted removes tombstones older than before and reports how many.
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

// MessageRecord represents a tracked chat message as stored in persistence.
type MessageRecord struct {
	ID              int64
	ConfigID        string
	GuildID         string
	ChannelID       string
	MessageID       string
	CommandKind     string
	SerializedState *string
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// IsLive reports whether the record is not tombstoned.
func (r *MessageRecord) IsLive() bool {
	return r.DeletedAt == nil
}
