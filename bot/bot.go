package bot

import (
	"log"
	"sync/atomic"

	"moderation-bot/commands"
	"moderation-bot/model"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	Scheduler          *Scheduler
	Audit              *utils.AuditLogger
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	config atomic.Value // *model.Config
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	b := &Bot{
		Session:   dg,
		DB:        db,
		Scheduler: NewScheduler(db, cfg.Scheduler),
		Audit:     utils.NewAuditLogger(dg, cfg.LogChannelID),
	}
	b.config.Store(cfg)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.Scheduler.Stop()
	b.Session.Close()
}

// RegisterCommands overwrites the application's slash commands: per guild
// when GuildIDs is configured, globally otherwise.
func (b *Bot) RegisterCommands() {
	cfg := b.GetConfig()
	cmds := commands.Generate()

	if len(cfg.GuildIDs) == 0 {
		registered, err := b.Session.ApplicationCommandBulkOverwrite(cfg.AppID, "", cmds)
		if err != nil {
			log.Printf("cannot register global commands: %v", err)
			return
		}
		b.RegisteredCommands = registered
		log.Printf("Registered %d global commands", len(registered))
		return
	}

	for _, guildID := range cfg.GuildIDs {
		registered, err := b.Session.ApplicationCommandBulkOverwrite(cfg.AppID, guildID, cmds)
		if err != nil {
			log.Printf("cannot register commands for guild '%s': %v", guildID, err)
			continue
		}
		b.RegisteredCommands = append(b.RegisteredCommands, registered...)
		log.Printf("Registered %d commands for guild %s", len(registered), guildID)
	}
}
