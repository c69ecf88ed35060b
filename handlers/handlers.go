package handlers

import (
	"log"
	"strings"

	"moderation-bot/bot"
	"moderation-bot/moderation"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Handlers owns the gateway-facing layer: slash command dispatch, component
// clicks, and the member events the timeout reconciler listens to.
type Handlers struct {
	bot        *bot.Bot
	db         *sqlx.DB
	actions    *moderation.Actions
	reconciler *moderation.Reconciler

	massban *massbanSessions
}

// Register wires all gateway handlers onto the bot's session.
func Register(b *bot.Bot, actions *moderation.Actions, reconciler *moderation.Reconciler) *Handlers {
	h := &Handlers{
		bot:        b,
		db:         b.DB,
		actions:    actions,
		reconciler: reconciler,
		massban:    newMassbanSessions(),
	}

	b.CommandHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn":       h.handleWarn,
		"warns":      h.handleWarns,
		"timeout":    h.handleTimeout,
		"timeouts":   h.handleTimeouts,
		"ban":        h.handleBan,
		"softban":    h.handleSoftban,
		"unban":      h.handleUnban,
		"kick":       h.handleKick,
		"purge":      h.handlePurge,
		"journal":    h.handleJournal,
		"massban":    h.handleMassban,
		"rolebutton": h.handleRoleButton,
		"whois":      h.handleWhois,
		"status":     h.handleStatus,
	}

	b.Session.AddHandler(h.onReady)
	b.Session.AddHandler(h.onInteractionCreate)
	b.Session.AddHandler(h.onGuildMemberAdd)
	b.Session.AddHandler(h.onGuildMemberUpdate)

	return h
}

func (h *Handlers) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Logged in as %s#%s", r.User.Username, r.User.Discriminator)
}

func (h *Handlers) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := h.bot.CommandHandlers[name]
		if !ok {
			log.Printf("No handler for command %q", name)
			return
		}
		if i.GuildID == "" {
			utils.SendErrorResponse(s, i, "This command can only be used in a server.")
			return
		}
		handler(s, i)

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, "RB:"):
			h.handleRoleButtonClick(s, i, customID)
		case strings.HasPrefix(customID, massbanConfirmPrefix), strings.HasPrefix(customID, massbanCancelPrefix):
			h.handleMassbanComponent(s, i, customID)
		}
	}
}

func (h *Handlers) onGuildMemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	h.reconciler.HandleMemberAdd(e.GuildID, e.Member)
}

func (h *Handlers) onGuildMemberUpdate(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	h.reconciler.HandleMemberUpdate(e.GuildID, e.BeforeUpdate, e.Member)
}
