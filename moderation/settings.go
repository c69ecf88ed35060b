package moderation

import (
	"moderation-bot/model"
	"moderation-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// GetSettings returns the guild's moderation settings, defaulting to
// {dm_users_on_punish: true, is_ephemeral: false} when none are stored.
func GetSettings(db *sqlx.DB, guildID string) model.ModSettings {
	settings, err := database.GetModSettings(db, guildID)
	if err != nil {
		return model.DefaultModSettings(guildID)
	}
	return settings
}
