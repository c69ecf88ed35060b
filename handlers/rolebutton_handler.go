package handlers

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"moderation-bot/model"
	"moderation-bot/utils"
	"moderation-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

// maxButtonsPerRow and maxComponentRows are the platform's component limits.
const (
	maxButtonsPerRow  = 5
	maxComponentRows  = 5
	defaultButtonName = "Role"
)

var customEmojiRegex = regexp.MustCompile(`<(a?):([a-zA-Z0-9_]+):(\d+)>`)

var buttonStyles = map[string]discordgo.ButtonStyle{
	"Blurple": discordgo.PrimaryButton,
	"Grey":    discordgo.SecondaryButton,
	"Green":   discordgo.SuccessButton,
	"Red":     discordgo.DangerButton,
}

func (h *Handlers) handleRoleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]

	if !h.deferWithSettings(s, i) {
		return
	}

	switch sub.Name {
	case "add":
		h.roleButtonAdd(s, i, mapOptions(sub.Options))
	case "list":
		h.roleButtonList(s, i)
	case "delete":
		h.roleButtonDelete(s, i, mapOptions(sub.Options))
	}
}

func (h *Handlers) roleButtonAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	link := opts["message_link"].StringValue()
	role := opts["role"].RoleValue(s, i.GuildID)

	guildID, channelID, messageID, err := utils.ParseMessageLink(link)
	if err != nil {
		utils.FollowUpError(s, i.Interaction, "That does not look like a valid message link.")
		return
	}
	if guildID != i.GuildID {
		utils.FollowUpError(s, i.Interaction, "The linked message belongs to a different server.")
		return
	}

	message, err := s.ChannelMessage(channelID, messageID)
	if err != nil {
		utils.FollowUpError(s, i.Interaction, "Failed to fetch the linked message. Does the bot have access to that channel?")
		return
	}
	if message.Author == nil || message.Author.ID != s.State.User.ID {
		utils.FollowUpError(s, i.Interaction, "Rolebuttons can only be attached to messages authored by the bot.")
		return
	}

	label := ""
	if opt, ok := opts["label"]; ok {
		label = opt.StringValue()
	}
	emoji := ""
	if opt, ok := opts["emoji"]; ok {
		emoji = opt.StringValue()
	}
	style := "Blurple"
	if opt, ok := opts["style"]; ok {
		style = opt.StringValue()
	}
	if label == "" && emoji == "" {
		label = defaultButtonName
	}

	record, err := database.AddRoleButton(h.db, model.RoleButton{
		GuildID:   i.GuildID,
		ChannelID: channelID,
		MessageID: messageID,
		RoleID:    role.ID,
		Emoji:     emoji,
		Label:     label,
		Style:     style,
	})
	if err != nil {
		log.Printf("Failed to persist role button: %v", err)
		utils.FollowUpError(s, i.Interaction, "Failed to save the rolebutton.")
		return
	}

	button := buildButton(record)
	components, err := appendButton(message.Components, button)
	if err != nil {
		// Roll the row back so the registry never references a button that
		// was never attached.
		if delErr := database.DeleteRoleButton(h.db, i.GuildID, record.EntryID); delErr != nil {
			log.Printf("Failed to roll back role button %d: %v", record.EntryID, delErr)
		}
		utils.FollowUpError(s, i.Interaction, "This message has no space left for more buttons.")
		return
	}

	if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Components: &components,
	}); err != nil {
		log.Printf("Failed to attach role button to message %s: %v", messageID, err)
		if delErr := database.DeleteRoleButton(h.db, i.GuildID, record.EntryID); delErr != nil {
			log.Printf("Failed to roll back role button %d: %v", record.EntryID, delErr)
		}
		utils.FollowUpError(s, i.Interaction, "Failed to edit the message to attach the button.")
		return
	}

	utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "✅ Rolebutton added",
		Description: fmt.Sprintf("Button `#%d` now hands out <@&%s> on [this message](%s).", record.EntryID, role.ID, link),
		Color:       utils.ColorGreen,
	})
}

func (h *Handlers) roleButtonList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	buttons, err := database.GetRoleButtons(h.db, i.GuildID)
	if err != nil {
		utils.FollowUpError(s, i.Interaction, "Failed to list rolebuttons.")
		return
	}
	if len(buttons) == 0 {
		utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
			Title:       "Rolebuttons",
			Description: "No rolebuttons are registered on this server.",
			Color:       utils.ColorBlue,
		})
		return
	}

	var sb strings.Builder
	for _, button := range buttons {
		fmt.Fprintf(&sb, "`#%d` <@&%s> on https://discord.com/channels/%s/%s/%s\n",
			button.EntryID, button.RoleID, button.GuildID, button.ChannelID, button.MessageID)
	}
	utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "Rolebuttons",
		Description: utils.Truncate(sb.String(), 4000),
		Color:       utils.ColorBlue,
	})
}

func (h *Handlers) roleButtonDelete(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	entryID := opts["button_id"].IntValue()

	button, err := database.GetRoleButton(h.db, i.GuildID, entryID)
	if err != nil {
		utils.FollowUpError(s, i.Interaction, "Failed to look up the rolebutton.")
		return
	}
	if button == nil {
		utils.FollowUpError(s, i.Interaction, "There is no rolebutton with that ID on this server.")
		return
	}

	// Detach the component first; a missing message is fine, the registry
	// row goes either way.
	if message, err := s.ChannelMessage(button.ChannelID, button.MessageID); err == nil {
		components := removeButton(message.Components, button.CustomID())
		if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    button.ChannelID,
			ID:         button.MessageID,
			Components: &components,
		}); err != nil {
			log.Printf("Failed to detach role button %d from message %s: %v", button.EntryID, button.MessageID, err)
		}
	}

	if err := database.DeleteRoleButton(h.db, i.GuildID, entryID); err != nil {
		utils.FollowUpError(s, i.Interaction, "Failed to delete the rolebutton.")
		return
	}

	utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "✅ Rolebutton deleted",
		Description: fmt.Sprintf("Rolebutton `#%d` has been deleted.", entryID),
		Color:       utils.ColorGreen,
	})
}

// handleRoleButtonClick toggles the role encoded in the clicked button. The
// custom ID carries everything needed, so clicks survive restarts.
func (h *Handlers) handleRoleButtonClick(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	entryID, roleID, err := model.ParseRoleButtonID(customID)
	if err != nil {
		log.Printf("Malformed role button custom ID %q: %v", customID, err)
		return
	}

	button, err := database.GetRoleButton(h.db, i.GuildID, entryID)
	if err != nil || button == nil {
		utils.SendErrorResponse(s, i, "This rolebutton is no longer registered. Please notify a moderator.")
		return
	}
	if _, err := s.State.Role(i.GuildID, roleID); err != nil {
		utils.SendErrorResponse(s, i, "The role behind this button no longer exists. Please notify a moderator.")
		return
	}
	if guild, err := s.State.Guild(i.GuildID); err == nil {
		me := resolveMember(s, i.GuildID, s.State.User.ID)
		if me == nil || !utils.HasGuildPermission(guild, me, discordgo.PermissionManageRoles) {
			utils.SendErrorResponse(s, i, "The bot is missing the `Manage Roles` permission. Please notify a moderator.")
			return
		}
	}

	hasRole := false
	for _, r := range i.Member.Roles {
		if r == roleID {
			hasRole = true
			break
		}
	}

	if hasRole {
		if err := s.GuildMemberRoleRemove(i.GuildID, i.Member.User.ID, roleID); err != nil {
			log.Printf("Failed to remove role %s from user %s: %v", roleID, i.Member.User.ID, err)
			utils.SendErrorResponse(s, i, "Failed to remove the role. Please notify a moderator.")
			return
		}
	} else {
		if err := s.GuildMemberRoleAdd(i.GuildID, i.Member.User.ID, roleID); err != nil {
			log.Printf("Failed to add role %s to user %s: %v", roleID, i.Member.User.ID, err)
			utils.SendErrorResponse(s, i, "Failed to hand out the role. Please notify a moderator.")
			return
		}
	}

	verb := "added"
	if hasRole {
		verb = "removed"
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("✅ Role <@&%s> %s.", roleID, verb),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Failed to acknowledge role button click: %v", err)
	}
}

// buildButton renders the persisted row as a message component.
func buildButton(record model.RoleButton) discordgo.Button {
	style, ok := buttonStyles[record.Style]
	if !ok {
		style = discordgo.PrimaryButton
	}
	button := discordgo.Button{
		Label:    record.Label,
		Style:    style,
		CustomID: record.CustomID(),
	}
	if record.Emoji != "" {
		button.Emoji = parseEmoji(record.Emoji)
	}
	return button
}

// parseEmoji accepts either a custom emoji mention like <:name:id> or a plain
// unicode emoji.
func parseEmoji(emoji string) *discordgo.ComponentEmoji {
	if m := customEmojiRegex.FindStringSubmatch(emoji); m != nil {
		return &discordgo.ComponentEmoji{
			Animated: m[1] == "a",
			Name:     m[2],
			ID:       m[3],
		}
	}
	return &discordgo.ComponentEmoji{Name: emoji}
}

// appendButton adds the button to the last row with space, or opens a new
// row. Errors when the message is at the component limit.
func appendButton(components []discordgo.MessageComponent, button discordgo.Button) ([]discordgo.MessageComponent, error) {
	out := make([]discordgo.MessageComponent, len(components))
	copy(out, components)

	for idx := len(out) - 1; idx >= 0; idx-- {
		row, ok := asActionsRow(out[idx])
		if !ok || len(row.Components) >= maxButtonsPerRow {
			continue
		}
		row.Components = append(row.Components, button)
		out[idx] = row
		return out, nil
	}

	if len(out) >= maxComponentRows {
		return nil, fmt.Errorf("message is at the component row limit")
	}
	out = append(out, discordgo.ActionsRow{Components: []discordgo.MessageComponent{button}})
	return out, nil
}

// removeButton strips the button with the given custom ID, dropping rows that
// end up empty.
func removeButton(components []discordgo.MessageComponent, customID string) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(components))
	for _, component := range components {
		row, ok := asActionsRow(component)
		if !ok {
			out = append(out, component)
			continue
		}
		kept := make([]discordgo.MessageComponent, 0, len(row.Components))
		for _, inner := range row.Components {
			if b, ok := inner.(*discordgo.Button); ok && b.CustomID == customID {
				continue
			}
			if b, ok := inner.(discordgo.Button); ok && b.CustomID == customID {
				continue
			}
			kept = append(kept, inner)
		}
		if len(kept) == 0 {
			continue
		}
		row.Components = kept
		out = append(out, row)
	}
	return out
}

// asActionsRow normalizes the pointer/value forms an unmarshaled component
// can take.
func asActionsRow(component discordgo.MessageComponent) (discordgo.ActionsRow, bool) {
	switch row := component.(type) {
	case discordgo.ActionsRow:
		return row, true
	case *discordgo.ActionsRow:
		return *row, true
	}
	return discordgo.ActionsRow{}, false
}
