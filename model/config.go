package model

import "time"

// ModSettings are the per-guild moderation settings.
type ModSettings struct {
	GuildID         string `db:"guild_id"`
	DMUsersOnPunish bool   `db:"dm_users_on_punish"`
	IsEphemeral     bool   `db:"is_ephemeral"`
}

// DefaultModSettings returns the settings used when a guild has no stored row.
func DefaultModSettings(guildID string) ModSettings {
	return ModSettings{
		GuildID:         guildID,
		DMUsersOnPunish: true,
		IsEphemeral:     false,
	}
}

// SchedulerConfig holds the durable timer scheduler's tunables.
type SchedulerConfig struct {
	// PollInterval is how often the scheduler queries for due timers.
	PollInterval time.Duration
	// FlagSweepSpec is the cron spec for the stale timeout_on_join sweep.
	FlagSweepSpec string
}

// Config stores the application configuration.
type Config struct {
	BotToken     string
	AppID        string
	LogChannelID string
	DBPath       string
	// GuildIDs restricts command registration to these guilds. Empty means
	// commands are registered globally.
	GuildIDs  []string
	Scheduler SchedulerConfig
}
