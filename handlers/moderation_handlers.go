package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"moderation-bot/model"
	"moderation-bot/moderation"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
)

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func mapOptions(options []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// deferWithSettings defers the response honoring the guild's is_ephemeral
// setting. Returns false when even the defer failed, in which case the
// interaction is a lost cause.
func (h *Handlers) deferWithSettings(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	settings := moderation.GetSettings(h.db, i.GuildID)
	if err := utils.DeferResponse(s, i, settings.IsEphemeral); err != nil {
		log.Printf("Failed to defer interaction response: %v", err)
		return false
	}
	return true
}

// resolveMember fetches the target as a guild member, or nil if they are not
// in the guild.
func resolveMember(s *discordgo.Session, guildID, userID string) *discordgo.Member {
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return nil
	}
	return member
}

func respondResult(s *discordgo.Session, i *discordgo.InteractionCreate, result model.ActionResult) {
	color := utils.ColorGreen
	if !result.Success {
		color = utils.ColorError
	}
	utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       result.Title,
		Description: result.Description,
		Color:       color,
	})
}

// respondActionError translates action-layer errors into operator-facing
// messages.
func respondActionError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var hierarchyErr *model.HierarchyError
	var permissionErr *model.MissingPermissionError
	var invalidErr *model.InvalidActionError

	switch {
	case errors.As(err, &hierarchyErr):
		utils.FollowUpError(s, i.Interaction, fmt.Sprintf("The target's highest role is higher than the %s's highest role.", hierarchyErr.Side))
	case errors.As(err, &permissionErr):
		utils.FollowUpError(s, i.Interaction, fmt.Sprintf("The bot requires the `%s` permission for this.", permissionErr.Permission))
	case errors.As(err, &invalidErr):
		utils.FollowUpError(s, i.Interaction, invalidErr.Reason)
	default:
		log.Printf("Moderation action failed: %v", err)
		utils.FollowUpError(s, i.Interaction, "Something went wrong while executing this action. Please try again later.")
	}
}

func (h *Handlers) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	member := resolveMember(s, i.GuildID, target.ID)
	if member == nil {
		utils.FollowUpError(s, i.Interaction, "This user is not a member of this server.")
		return
	}

	result, err := h.actions.Warn(i.GuildID, member, i.Member, reason)
	if err != nil {
		respondActionError(s, i, err)
		return
	}
	respondResult(s, i, result)
}

func (h *Handlers) handleWarns(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	opts := mapOptions(sub.Options)
	target := opts["user"].UserValue(s)

	if !h.deferWithSettings(s, i) {
		return
	}

	switch sub.Name {
	case "list":
		warns, err := moderation.GetWarns(h.db, target.ID, i.GuildID)
		if err != nil {
			utils.FollowUpError(s, i.Interaction, "Failed to look up warnings for this user.")
			return
		}
		utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("%s's warnings", target.Username),
			Description: fmt.Sprintf("**Warns:** `%d`", warns),
			Color:       utils.ColorBlue,
		})

	case "clear":
		reason := ""
		if opt, ok := opts["reason"]; ok {
			reason = opt.StringValue()
		}
		if err := moderation.ClearWarns(h.db, target.ID, i.GuildID, i.Member.User.Username, reason); err != nil {
			utils.FollowUpError(s, i.Interaction, "Failed to clear warnings for this user.")
			return
		}
		h.actions.Audit.Log(i.GuildID, "⚠️ Warnings cleared",
			fmt.Sprintf("**%s**'s warnings were cleared by **%s**.\n**Reason:** ```%s```",
				target.Username, i.Member.User.Username, utils.FormatReason(reason, 1000)),
			utils.ColorGreen)
		utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
			Title:       "✅ Warnings cleared",
			Description: fmt.Sprintf("**%s**'s warnings have been cleared.\n**Reason:** ```%s```", target.Username, utils.FormatReason(reason, 1000)),
			Color:       utils.ColorGreen,
		})
	}
}

func (h *Handlers) handleTimeout(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)
	duration, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil {
		utils.SendErrorResponse(s, i, "Invalid duration. Use a format like `30m`, `12h` or `40d`.")
		return
	}
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	if target.ID == i.Member.User.ID {
		utils.SendErrorResponse(s, i, "You cannot time yourself out.")
		return
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	member := resolveMember(s, i.GuildID, target.ID)
	if member == nil {
		utils.FollowUpError(s, i.Interaction, "This user is not a member of this server.")
		return
	}

	result, err := h.actions.Timeout(i.GuildID, member, i.Member, time.Now().Add(duration), reason)
	if err != nil {
		respondActionError(s, i, err)
		return
	}
	respondResult(s, i, result)
}

func (h *Handlers) handleTimeouts(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	if sub.Name != "remove" {
		return
	}
	opts := mapOptions(sub.Options)
	target := opts["user"].UserValue(s)
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	member := resolveMember(s, i.GuildID, target.ID)
	if member == nil {
		utils.FollowUpError(s, i.Interaction, "This user is not a member of this server.")
		return
	}
	if member.CommunicationDisabledUntil == nil {
		utils.FollowUpError(s, i.Interaction, "This user is not timed out.")
		return
	}

	// Drop any pending extension segments before lifting the timeout so the
	// chain cannot re-impose it.
	h.reconciler.CancelExtensions(i.GuildID, target.ID)

	result, err := h.actions.RemoveTimeout(i.GuildID, member, i.Member, reason)
	if err != nil {
		respondActionError(s, i, err)
		return
	}
	respondResult(s, i, result)
}

func (h *Handlers) handleBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)

	banOpts := moderation.BanOptions{}
	if opt, ok := opts["reason"]; ok {
		banOpts.Reason = opt.StringValue()
	}
	if opt, ok := opts["days_to_delete"]; ok {
		banOpts.DaysToDelete = int(opt.IntValue())
	}
	if opt, ok := opts["duration"]; ok {
		duration, err := utils.ParseDuration(opt.StringValue())
		if err != nil {
			utils.SendErrorResponse(s, i, "Invalid duration. Use a format like `12h` or `7d`.")
			return
		}
		until := time.Now().Add(duration)
		banOpts.Duration = &until
	}

	if target.ID == i.Member.User.ID {
		utils.SendErrorResponse(s, i, "You cannot ban yourself.")
		return
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	result, err := h.actions.Ban(i.GuildID, target, i.Member, banOpts)
	if err != nil {
		respondActionError(s, i, err)
		return
	}
	respondResult(s, i, result)
}

func (h *Handlers) handleSoftban(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)

	banOpts := moderation.BanOptions{Soft: true, DaysToDelete: 1}
	if opt, ok := opts["reason"]; ok {
		banOpts.Reason = opt.StringValue()
	}
	if opt, ok := opts["days_to_delete"]; ok {
		banOpts.DaysToDelete = int(opt.IntValue())
	}

	if target.ID == i.Member.User.ID {
		utils.SendErrorResponse(s, i, "You cannot softban yourself.")
		return
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	result, err := h.actions.Ban(i.GuildID, target, i.Member, banOpts)
	if err != nil {
		respondActionError(s, i, err)
		return
	}
	respondResult(s, i, result)
}

func (h *Handlers) handleUnban(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	result, err := h.actions.Unban(i.GuildID, target, i.Member, reason)
	if err != nil {
		respondActionError(s, i, err)
		return
	}
	respondResult(s, i, result)
}

func (h *Handlers) handleKick(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	if target.ID == i.Member.User.ID {
		utils.SendErrorResponse(s, i, "You cannot kick yourself.")
		return
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	member := resolveMember(s, i.GuildID, target.ID)
	if member == nil {
		utils.FollowUpError(s, i.Interaction, "This user is not a member of this server.")
		return
	}

	result, err := h.actions.Kick(i.GuildID, member, i.Member, reason)
	if err != nil {
		respondActionError(s, i, err)
		return
	}
	respondResult(s, i, result)
}

func (h *Handlers) handleJournal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	opts := mapOptions(sub.Options)
	target := opts["user"].UserValue(s)

	if !h.deferWithSettings(s, i) {
		return
	}

	switch sub.Name {
	case "get":
		notes, err := moderation.GetNotes(h.db, target.ID, i.GuildID)
		if err != nil {
			utils.FollowUpError(s, i.Interaction, "Failed to retrieve the journal for this user.")
			return
		}
		if len(notes) == 0 {
			utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
				Title:       fmt.Sprintf("Journal entries for %s", target.Username),
				Description: "No journal entries found for this user.",
				Color:       utils.ColorBlue,
			})
			return
		}
		var sb strings.Builder
		for idx, note := range notes {
			fmt.Fprintf(&sb, "`#%d` %s\n", idx+1, note)
		}
		utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Journal entries for %s", target.Username),
			Description: utils.Truncate(sb.String(), 4000),
			Color:       utils.ColorBlue,
		})

	case "add":
		note := opts["note"].StringValue()
		entry := fmt.Sprintf("💬 **Note by %s:** %s", i.Member.User.Username, note)
		if err := moderation.AddNote(h.db, target.ID, i.GuildID, entry); err != nil {
			utils.FollowUpError(s, i.Interaction, "Failed to add the journal entry.")
			return
		}
		utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
			Title:       "✅ Journal entry added",
			Description: fmt.Sprintf("Added a new journal entry for **%s**.", target.Username),
			Color:       utils.ColorGreen,
		})
	}
}
