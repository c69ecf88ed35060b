package utils

import (
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// AuditLogger publishes structured moderation log entries to the configured
// log channel. Publishing is best-effort: a failed send is logged locally and
// never propagated to the action that produced it.
//
// A guild can be frozen for the duration of a bulk operation so that
// per-member entries do not flood the channel; entries sent with bypass set
// go through regardless.
type AuditLogger struct {
	session   *discordgo.Session
	channelID string

	mu     sync.Mutex
	frozen map[string]bool
}

// NewAuditLogger creates a publisher for the given log channel. An empty
// channel ID disables publishing.
func NewAuditLogger(session *discordgo.Session, channelID string) *AuditLogger {
	return &AuditLogger{
		session:   session,
		channelID: channelID,
		frozen:    make(map[string]bool),
	}
}

// Freeze suppresses entries for the guild until Unfreeze is called.
func (l *AuditLogger) Freeze(guildID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frozen[guildID] = true
}

// Unfreeze resumes publishing for the guild.
func (l *AuditLogger) Unfreeze(guildID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.frozen, guildID)
}

func (l *AuditLogger) isFrozen(guildID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frozen[guildID]
}

// Log publishes an embed entry for the guild.
func (l *AuditLogger) Log(guildID, title, description string, color int) {
	l.publish(guildID, title, description, color, nil, false)
}

// LogBypass publishes an entry even while the guild is frozen. Bulk
// operations use it for their summary entry.
func (l *AuditLogger) LogBypass(guildID, title, description string, color int, file *discordgo.File) {
	l.publish(guildID, title, description, color, file, true)
}

func (l *AuditLogger) publish(guildID, title, description string, color int, file *discordgo.File, bypass bool) {
	if l == nil || l.session == nil || l.channelID == "" {
		return
	}
	if !bypass && l.isFrozen(guildID) {
		return
	}

	msg := &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       title,
			Description: description,
			Color:       color,
		},
	}
	if file != nil {
		msg.Files = []*discordgo.File{file}
	}
	if _, err := l.session.ChannelMessageSendComplex(l.channelID, msg); err != nil {
		log.Printf("Failed to publish audit log entry for guild %s: %v", guildID, err)
	}
}
