package database

import (
	"database/sql"
	"errors"
	"fmt"

	"moderation-bot/model"

	"github.com/jmoiron/sqlx"
)

// GetModSettings returns the guild's moderation settings, falling back to
// the defaults when no row is stored.
func GetModSettings(db *sqlx.DB, guildID string) (model.ModSettings, error) {
	var settings model.ModSettings
	query := "SELECT * FROM mod_config WHERE guild_id = ?"
	err := db.Get(&settings, query, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultModSettings(guildID), nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to get mod settings for guild %s: %w", guildID, err)
	}
	return settings, nil
}

// UpsertModSettings stores the guild's moderation settings.
func UpsertModSettings(db *sqlx.DB, settings model.ModSettings) error {
	query := `INSERT INTO mod_config (guild_id, dm_users_on_punish, is_ephemeral)
              VALUES (:guild_id, :dm_users_on_punish, :is_ephemeral)
              ON CONFLICT(guild_id) DO UPDATE
              SET dm_users_on_punish = excluded.dm_users_on_punish, is_ephemeral = excluded.is_ephemeral`

	if _, err := db.NamedExec(query, settings); err != nil {
		return fmt.Errorf("failed to upsert mod settings for guild %s: %w", settings.GuildID, err)
	}
	return nil
}
