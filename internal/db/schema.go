package db

// SchemaVersion is the version recorded in schema_version for SchemaSQL.
const SchemaVersion = 1

// SchemaSQL is the complete schema for a fresh dicebot database.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests use it via
// GetSchemaSQL() so repository code that drifts from it fails immediately
// with "no such column".
//
// A partial index keeps (channel_id, message_id) unique among live
// message_records; tombstoned rows keep deleted_at set until they are purged.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS configurations (
	id TEXT PRIMARY KEY,
	command_kind TEXT NOT NULL,
	guild_id TEXT,
	channel_id TEXT NOT NULL,
	serialized_config TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_configurations_channel ON configurations(channel_id);

CREATE TABLE IF NOT EXISTS message_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config_id TEXT NOT NULL,
	guild_id TEXT,
	channel_id TEXT NOT NULL,
	message_id TEXT NOT NULL,
	command_kind TEXT NOT NULL,
	serialized_state TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	deleted_at DATETIME,
	FOREIGN KEY (config_id) REFERENCES configurations(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_message_records_live
	ON message_records(channel_id, message_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_message_records_config_live
	ON message_records(config_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_message_records_deleted
	ON message_records(deleted_at) WHERE deleted_at IS NOT NULL;

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
