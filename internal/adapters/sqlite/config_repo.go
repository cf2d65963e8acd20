// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/ports/secondary"
)

// ConfigRepository implements secondary.ConfigRepository with SQLite.
type ConfigRepository struct {
	db *sql.DB
}

// NewConfigRepository creates a new SQLite configuration repository.
func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

const configColumns = "id, command_kind, guild_id, channel_id, serialized_config, created_at"

// Create persists a new configuration.
func (r *ConfigRepository) Create(ctx context.Context, cfg *secondary.ConfigRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO configurations ("+configColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		cfg.ID, cfg.CommandKind, nullString(cfg.GuildID), cfg.ChannelID, cfg.SerializedConfig, createdAt(cfg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}
	return nil
}

// SaveIfAbsent persists a configuration unless one with the same ID exists.
func (r *ConfigRepository) SaveIfAbsent(ctx context.Context, cfg *secondary.ConfigRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO configurations ("+configColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		cfg.ID, cfg.CommandKind, nullString(cfg.GuildID), cfg.ChannelID, cfg.SerializedConfig, createdAt(cfg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// GetByID retrieves a configuration by its ID.
func (r *ConfigRepository) GetByID(ctx context.Context, id string) (*secondary.ConfigRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+configColumns+" FROM configurations WHERE id = ?", id)

	record, err := scanConfig(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("configuration %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	return record, nil
}

// Delete removes a configuration. Its message records go with it.
func (r *ConfigRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM configurations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("configuration %s not found", id))
	}
	return nil
}

// List retrieves configurations matching the given filters, newest first.
func (r *ConfigRepository) List(ctx context.Context, filters secondary.ConfigFilters) ([]*secondary.ConfigRecord, error) {
	var (
		where []string
		args  []any
	)
	if filters.ChannelID != "" {
		where = append(where, "channel_id = ?")
		args = append(args, filters.ChannelID)
	}
	if filters.CommandKind != "" {
		where = append(where, "command_kind = ?")
		args = append(args, filters.CommandKind)
	}

	query := "SELECT " + configColumns + " FROM configurations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	var configs []*secondary.ConfigRecord
	for rows.Next() {
		record, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		configs = append(configs, record)
	}
	return configs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(s scanner) (*secondary.ConfigRecord, error) {
	var (
		guildID sql.NullString
		created sql.NullTime
	)
	record := &secondary.ConfigRecord{}
	if err := s.Scan(&record.ID, &record.CommandKind, &guildID, &record.ChannelID, &record.SerializedConfig, &created); err != nil {
		return nil, err
	}
	record.GuildID = guildID.String
	record.CreatedAt = created.Time
	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Ensure ConfigRepository implements the interface.
var _ secondary.ConfigRepository = (*ConfigRepository)(nil)
