package handlers

import (
	"fmt"

	"moderation-bot/moderation"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func (h *Handlers) handlePurge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	count := int(opts["count"].IntValue())

	criteria := moderation.PurgeCriteria{}
	if opt, ok := opts["user"]; ok {
		criteria.AuthorID = opt.UserValue(s).ID
	}
	if opt, ok := opts["regex"]; ok {
		criteria.Regex = opt.StringValue()
	}
	if opt, ok := opts["startswith"]; ok {
		criteria.StartsWith = opt.StringValue()
	}
	if opt, ok := opts["endswith"]; ok {
		criteria.EndsWith = opt.StringValue()
	}
	if opt, ok := opts["notext"]; ok {
		criteria.NoText = opt.BoolValue()
	}
	if opt, ok := opts["onlytext"]; ok {
		criteria.OnlyText = opt.BoolValue()
	}
	if opt, ok := opts["attachments"]; ok {
		criteria.Attachments = opt.BoolValue()
	}
	if opt, ok := opts["embeds"]; ok {
		criteria.Embeds = opt.BoolValue()
	}
	if opt, ok := opts["links"]; ok {
		criteria.Links = opt.BoolValue()
	}
	if opt, ok := opts["invites"]; ok {
		criteria.Invites = opt.BoolValue()
	}

	// Purge output is always ephemeral so the confirmation does not linger in
	// the channel that was just cleaned.
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}

	result, err := moderation.Purge(s, i.ChannelID, criteria, count)
	if err != nil {
		utils.FollowUpError(s, i.Interaction, fmt.Sprintf("Purge failed: %v", err))
		return
	}

	if result.Matched == 0 {
		utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
			Title:       "🧹 Nothing to purge",
			Description: "No messages matched your criteria. Only messages younger than 2 weeks can be purged.",
			Color:       utils.ColorBlue,
		})
		return
	}

	utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "🧹 Messages purged",
		Description: fmt.Sprintf("Deleted **%d/%d** matching messages.", result.Deleted, result.Matched),
		Color:       utils.ColorGreen,
	})
}
