package primary

import (
	"context"
	"time"
)

// ConfigurationService defines the primary port for configuration management.
type ConfigurationService interface {
	// CreateConfiguration validates and persists a configuration. With Post
	// set it also sends the initial button message and registers it.
	CreateConfiguration(ctx context.Context, req CreateConfigurationRequest) (*CreateConfigurationResponse, error)

	// GetConfiguration retrieves a configuration by ID.
	GetConfiguration(ctx context.Context, id string) (*Configuration, error)

	// ListConfigurations lists configurations matching the filters.
	ListConfigurations(ctx context.Context, filters ConfigurationFilters) ([]*Configuration, error)

	// DeleteConfiguration deletes a configuration and its message records.
	DeleteConfiguration(ctx context.Context, req DeleteConfigurationRequest) error
}

// CreateConfigurationRequest contains parameters for creating a configuration.
type CreateConfigurationRequest struct {
	Kind            string
	Body            string
	GuildID         string
	ChannelID       string
	TargetChannelID string
	AnswerFormat    string
	Locale          string
	Post            bool
}

// DeleteConfigurationRequest contains parameters for deleting a configuration.
type DeleteConfigurationRequest struct {
	ID    string
	Force bool
}

// CreateConfigurationResponse contains the result of creating a configuration.
type CreateConfigurationResponse struct {
	Configuration *Configuration
	MessageID     string // set when the initial message was posted
	CustomIDs     []string
}

// Configuration is the public view of a stored configuration.
type Configuration struct {
	ID              string
	Kind            string
	Body            string
	GuildID         string
	ChannelID       string
	TargetChannelID string
	AnswerFormat    string
	Locale          string
	CreatedAt       time.Time
}

// ConfigurationFilters contains filter options for listing configurations.
type ConfigurationFilters struct {
	ChannelID string
	Kind      string
	Limit     int
}
