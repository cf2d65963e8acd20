// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test files.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/dicebot/internal/db"
	"github.com/example/dicebot/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedConfig inserts a test configuration and returns its ID.
func seedConfig(t *testing.T, database *sql.DB, id, channelID string) string {
	t.Helper()
	if id == "" {
		id = "4f3c2a10-9d7e-4b1a-8c55-0a1b2c3d4e5f"
	}
	if channelID == "" {
		channelID = "chan-1"
	}
	_, err := database.Exec(
		"INSERT INTO configurations (id, command_kind, channel_id, serialized_config, created_at) VALUES (?, 'custom_dice', ?, '{}', ?)",
		id, channelID, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to seed configuration: %v", err)
	}
	return id
}

// seedMessage inserts a live message record through the repository.
func seedMessage(t *testing.T, database *sql.DB, configID, channelID, messageID string) {
	t.Helper()
	_, err := database.ExecContext(context.Background(),
		"INSERT INTO message_records (config_id, channel_id, message_id, command_kind, created_at) VALUES (?, ?, ?, 'custom_dice', ?)",
		configID, channelID, messageID, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to seed message record: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func messageRecord(configID, channelID, messageID string) *secondary.MessageRecord {
	return &secondary.MessageRecord{
		ConfigID:    configID,
		ChannelID:   channelID,
		MessageID:   messageID,
		CommandKind: "custom_dice",
	}
}
