package moderation

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// bulkDeleteMaxAge is how far back messages remain bulk-deletable.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// MessagePredicate accepts or rejects a message for purging.
type MessagePredicate func(*discordgo.Message) bool

// PurgeCriteria are the operator-supplied purge filters. All supplied
// filters must accept a message for it to be deleted.
type PurgeCriteria struct {
	Regex       string
	StartsWith  string
	EndsWith    string
	NoText      bool
	OnlyText    bool
	Attachments bool
	Embeds      bool
	Links       bool
	Invites     bool
	AuthorID    string
}

// BuildMessagePredicates assembles the purge filter pipeline.
func BuildMessagePredicates(criteria PurgeCriteria) ([]MessagePredicate, error) {
	var predicates []MessagePredicate

	if criteria.Regex != "" {
		re, err := regexp.Compile(criteria.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return m.Content != "" && re.MatchString(m.Content)
		})
	}

	if criteria.StartsWith != "" {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return strings.HasPrefix(m.Content, criteria.StartsWith)
		})
	}

	if criteria.EndsWith != "" {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return strings.HasSuffix(m.Content, criteria.EndsWith)
		})
	}

	if criteria.NoText {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return m.Content == ""
		})
	}

	if criteria.OnlyText {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return m.Content != "" && len(m.Attachments) == 0 && len(m.Embeds) == 0
		})
	}

	if criteria.Attachments {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return len(m.Attachments) > 0
		})
	}

	if criteria.Embeds {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return len(m.Embeds) > 0
		})
	}

	if criteria.Links {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return m.Content != "" && utils.ContainsURL(m.Content)
		})
	}

	if criteria.Invites {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return m.Content != "" && utils.ContainsInvite(m.Content)
		})
	}

	if criteria.AuthorID != "" {
		predicates = append(predicates, func(m *discordgo.Message) bool {
			return m.Author != nil && m.Author.ID == criteria.AuthorID
		})
	}

	return predicates, nil
}

// FilterMessages selects up to limit messages accepted by every predicate,
// skipping anything older than the bulk-delete window.
func FilterMessages(messages []*discordgo.Message, predicates []MessagePredicate, limit int, now time.Time) []*discordgo.Message {
	cutoff := now.Add(-bulkDeleteMaxAge)
	var selected []*discordgo.Message
	for _, message := range messages {
		if !message.Timestamp.After(cutoff) {
			break // history is newest-first; everything past here is too old
		}
		accepted := true
		for _, predicate := range predicates {
			if !predicate(message) {
				accepted = false
				break
			}
		}
		if accepted {
			selected = append(selected, message)
			if limit > 0 && len(selected) >= limit {
				break
			}
		}
	}
	return selected
}

// PurgeResult summarizes a purge run. Deleted may be lower than Matched when
// the bulk delete partially failed.
type PurgeResult struct {
	Deleted int
	Matched int
}

// PurgeSession is the slice of the session the purge needs.
type PurgeSession interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Purge deletes up to limit matching recent messages from the channel. On a
// bulk-delete failure it falls back to deleting one by one so a partial
// success is reported as such rather than lost.
func Purge(session PurgeSession, channelID string, criteria PurgeCriteria, limit int) (PurgeResult, error) {
	predicates, err := BuildMessagePredicates(criteria)
	if err != nil {
		return PurgeResult{}, err
	}

	messages, err := session.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		return PurgeResult{}, fmt.Errorf("failed to fetch channel history: %w", err)
	}

	matched := FilterMessages(messages, predicates, limit, time.Now())
	result := PurgeResult{Matched: len(matched)}
	if len(matched) == 0 {
		return result, nil
	}

	ids := make([]string, len(matched))
	for i, message := range matched {
		ids[i] = message.ID
	}

	if err := session.ChannelMessagesBulkDelete(channelID, ids); err != nil {
		log.Printf("Bulk delete in channel %s failed, falling back to single deletes: %v", channelID, err)
		for _, id := range ids {
			if err := session.ChannelMessageDelete(channelID, id); err != nil {
				continue
			}
			result.Deleted++
		}
		return result, nil
	}

	result.Deleted = len(ids)
	return result, nil
}
