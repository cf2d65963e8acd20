package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/ports/secondary"
)

// MessageRepository implements secondary.MessageRepository with SQLite.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new SQLite message record repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = "id, config_id, guild_id, channel_id, message_id, command_kind, serialized_state, created_at, deleted_at"

// Create persists a live record. The partial unique index turns a racing
// second insert for the same message into a no-op.
func (r *MessageRepository) Create(ctx context.Context, record *secondary.MessageRecord) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO message_records
			(config_id, guild_id, channel_id, message_id, command_kind, serialized_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ConfigID, nullString(record.GuildID), record.ChannelID, record.MessageID,
		record.CommandKind, record.SerializedState, createdAt(record.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create message record: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// GetByChannelMessage returns the live record of a message, or its newest tombstone.
func (r *MessageRepository) GetByChannelMessage(ctx context.Context, channelID, messageID string) (*secondary.MessageRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+messageColumns+` FROM message_records
		WHERE channel_id = ? AND message_id = ?
		ORDER BY (deleted_at IS NULL) DESC, id DESC
		LIMIT 1`,
		channelID, messageID,
	)

	record, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("no record for message %s in channel %s", messageID, channelID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message record: %w", err)
	}
	return record, nil
}

// UpdateState replaces the serialized state of a live record.
func (r *MessageRepository) UpdateState(ctx context.Context, channelID, messageID string, state *string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE message_records SET serialized_state = ? WHERE channel_id = ? AND message_id = ? AND deleted_at IS NULL",
		state, channelID, messageID,
	)
	if err != nil {
		return fmt.Errorf("failed to update message state: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("no live record for message %s in channel %s", messageID, channelID))
	}
	return nil
}

// ListActiveMessageIDs returns the message ids of all live records of a configuration.
func (r *MessageRepository) ListActiveMessageIDs(ctx context.Context, configID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT message_id FROM message_records WHERE config_id = ? AND deleted_at IS NULL ORDER BY id ASC",
		configID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active messages: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan message id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkDeleted tombstones the live record of a message.
func (r *MessageRepository) MarkDeleted(ctx context.Context, channelID, messageID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE message_records SET deleted_at = ? WHERE channel_id = ? AND message_id = ? AND deleted_at IS NULL",
		at.UTC(), channelID, messageID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message deleted: %w", err)
	}
	return nil
}

// PurgeDeleted removes tombstones older than before.
func (r *MessageRepository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM message_records WHERE deleted_at IS NOT NULL AND deleted_at < ?",
		before.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge deleted message records: %w", err)
	}
	return result.RowsAffected()
}

func scanMessage(s scanner) (*secondary.MessageRecord, error) {
	var (
		guildID sql.NullString
		state   sql.NullString
		created sql.NullTime
		deleted sql.NullTime
	)
	record := &secondary.MessageRecord{}
	err := s.Scan(&record.ID, &record.ConfigID, &guildID, &record.ChannelID, &record.MessageID,
		&record.CommandKind, &state, &created, &deleted)
	if err != nil {
		return nil, err
	}

	record.GuildID = guildID.String
	record.CreatedAt = created.Time
	if state.Valid {
		s := state.String
		record.SerializedState = &s
	}
	if deleted.Valid {
		t := deleted.Time
		record.DeletedAt = &t
	}
	return record, nil
}

// Ensure MessageRepository implements the interface.
var _ secondary.MessageRepository = (*MessageRepository)(nil)
