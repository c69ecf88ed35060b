package database

import (
	"database/sql"
	"errors"
	"fmt"

	"moderation-bot/model"

	"github.com/jmoiron/sqlx"
)

// AddRoleButton persists a role button, assigning it the next sequential
// entry id, and returns the stored row.
func AddRoleButton(db *sqlx.DB, button model.RoleButton) (model.RoleButton, error) {
	var last sql.NullInt64
	if err := db.Get(&last, "SELECT MAX(entry_id) FROM button_roles"); err != nil {
		return button, fmt.Errorf("failed to determine next role button id: %w", err)
	}
	button.EntryID = last.Int64 + 1

	query := `INSERT INTO button_roles (entry_id, guild_id, channel_id, message_id, role_id, emoji, label, style)
              VALUES (:entry_id, :guild_id, :channel_id, :message_id, :role_id, :emoji, :label, :style)`

	if _, err := db.NamedExec(query, button); err != nil {
		return button, fmt.Errorf("failed to insert role button: %w", err)
	}
	return button, nil
}

// GetRoleButton retrieves one role button by guild and entry id.
func GetRoleButton(db *sqlx.DB, guildID string, entryID int64) (*model.RoleButton, error) {
	var button model.RoleButton
	query := "SELECT * FROM button_roles WHERE guild_id = ? AND entry_id = ?"
	err := db.Get(&button, query, guildID, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role button %d in guild %s: %w", entryID, guildID, err)
	}
	return &button, nil
}

// GetRoleButtons lists all role buttons registered for a guild.
func GetRoleButtons(db *sqlx.DB, guildID string) ([]model.RoleButton, error) {
	var buttons []model.RoleButton
	query := "SELECT * FROM button_roles WHERE guild_id = ? ORDER BY entry_id"
	if err := db.Select(&buttons, query, guildID); err != nil {
		return nil, fmt.Errorf("failed to list role buttons for guild %s: %w", guildID, err)
	}
	return buttons, nil
}

// DeleteRoleButton removes a role button row.
func DeleteRoleButton(db *sqlx.DB, guildID string, entryID int64) error {
	query := "DELETE FROM button_roles WHERE guild_id = ? AND entry_id = ?"
	if _, err := db.Exec(query, guildID, entryID); err != nil {
		return fmt.Errorf("failed to delete role button %d in guild %s: %w", entryID, guildID, err)
	}
	return nil
}
