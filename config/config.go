package config

import (
	"log"
	"os"
	"strings"
	"time"

	"moderation-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables and the optional
// settings file at data/settings.yaml.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, audit logging will be disabled")
	}

	var guildIDs []string
	if raw := os.Getenv("GUILD_IDS"); raw != "" {
		guildIDs = strings.Split(raw, ",")
	}

	cfg := &model.Config{
		BotToken:     token,
		AppID:        appID,
		LogChannelID: logChannelID,
		DBPath:       "./data/moderation.db",
		GuildIDs:     guildIDs,
	}

	v := viper.New()
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath("./data")
	v.SetDefault("database.path", cfg.DBPath)
	v.SetDefault("scheduler.poll_interval", "15s")
	v.SetDefault("scheduler.flag_sweep_cron", "0 5 * * *")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("Info: settings file not found, using defaults")
	}

	cfg.DBPath = v.GetString("database.path")
	cfg.Scheduler = model.SchedulerConfig{
		PollInterval:  v.GetDuration("scheduler.poll_interval"),
		FlagSweepSpec: v.GetString("scheduler.flag_sweep_cron"),
	}
	if cfg.Scheduler.PollInterval <= 0 {
		cfg.Scheduler.PollInterval = 15 * time.Second
	}

	return cfg, nil
}
