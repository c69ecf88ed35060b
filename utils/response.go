package utils

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// Embed colors used across responses and audit entries.
const (
	ColorError = 0xFF0000
	ColorWarn  = 0xE67E22
	ColorGreen = 0x77B255
	ColorBlue  = 0x3498DB
)

// SendErrorResponse sends an ephemeral error message.
func SendErrorResponse(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending error response: %v", err)
	}
}

// DeferResponse defers an interaction response, optionally making it ephemeral.
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		response.Data = &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		}
	}
	return s.InteractionRespond(i.Interaction, response)
}

// FollowUpEmbed edits the deferred response with an embed.
func FollowUpEmbed(s *discordgo.Session, i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Embeds: &embeds,
	})
	if err != nil {
		log.Printf("Error sending follow-up embed: %v", err)
	}
}

// FollowUpError edits the deferred response with an error message.
func FollowUpError(s *discordgo.Session, i *discordgo.Interaction, message string) {
	errorMsg := "❌ " + message
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &errorMsg,
	})
	if err != nil {
		log.Printf("Error sending follow-up error message: %v", err)
	}
}

// FollowUpFile edits the deferred response attaching a file.
func FollowUpFile(s *discordgo.Session, i *discordgo.Interaction, content string, file *discordgo.File) {
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &content,
		Files:   []*discordgo.File{file},
	})
	if err != nil {
		log.Printf("Error sending follow-up file: %v", err)
	}
}
