package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the moderation database and ensures all tables exist.
func Init(dbPath string) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to moderation database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS timers (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        event TEXT NOT NULL,
        expires_at DATETIME NOT NULL,
        notes TEXT NOT NULL DEFAULT ''
    );
    CREATE TABLE IF NOT EXISTS users (
        user_id TEXT NOT NULL,
        guild_id TEXT NOT NULL,
        warns INTEGER NOT NULL DEFAULT 0,
        notes TEXT NOT NULL DEFAULT '',
        flags TEXT NOT NULL DEFAULT '',
        PRIMARY KEY(user_id, guild_id)
    );
    CREATE TABLE IF NOT EXISTS mod_config (
        guild_id TEXT PRIMARY KEY,
        dm_users_on_punish BOOLEAN NOT NULL DEFAULT TRUE,
        is_ephemeral BOOLEAN NOT NULL DEFAULT FALSE
    );
    CREATE TABLE IF NOT EXISTS button_roles (
        entry_id INTEGER PRIMARY KEY,
        guild_id TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        message_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        emoji TEXT NOT NULL DEFAULT '',
        label TEXT NOT NULL DEFAULT '',
        style TEXT NOT NULL DEFAULT ''
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create moderation tables: %w", err)
	}

	return db, nil
}
