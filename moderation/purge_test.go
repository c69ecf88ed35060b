package moderation

import (
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurgeSession struct {
	messages []*discordgo.Message

	bulkDeleted   [][]string
	singleDeleted []string

	bulkErr      error
	singleErrFor map[string]bool
}

func (f *fakePurgeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return f.messages, nil
}

func (f *fakePurgeSession) ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.bulkDeleted = append(f.bulkDeleted, messages)
	return nil
}

func (f *fakePurgeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	if f.singleErrFor[messageID] {
		return fmt.Errorf("delete of %s rejected", messageID)
	}
	f.singleDeleted = append(f.singleDeleted, messageID)
	return nil
}

func message(id, authorID, content string, age time.Duration) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
		Timestamp: time.Now().Add(-age),
	}
}

func TestFilterMessagesStopsAtBulkDeleteWindow(t *testing.T) {
	now := time.Now()
	messages := []*discordgo.Message{
		message("1", "a", "recent", time.Hour),
		message("2", "a", "older", 13*24*time.Hour),
		message("3", "a", "ancient", 20*24*time.Hour),
		message("4", "a", "should never be reached", time.Hour),
	}

	selected := FilterMessages(messages, nil, 0, now)
	require.Len(t, selected, 2, "history is newest-first; everything past the window is skipped")
	assert.Equal(t, "1", selected[0].ID)
	assert.Equal(t, "2", selected[1].ID)
}

func TestFilterMessagesHonorsLimit(t *testing.T) {
	messages := []*discordgo.Message{
		message("1", "a", "x", time.Minute),
		message("2", "a", "x", 2*time.Minute),
		message("3", "a", "x", 3*time.Minute),
	}
	selected := FilterMessages(messages, nil, 2, time.Now())
	assert.Len(t, selected, 2)
}

func TestPurgeWithCriteria(t *testing.T) {
	session := &fakePurgeSession{
		messages: []*discordgo.Message{
			message("1", "spammer", "buy now https://spam.example", time.Minute),
			message("2", "regular", "hello", 2*time.Minute),
			message("3", "spammer", "no link here", 3*time.Minute),
		},
	}

	result, err := Purge(session, "chan", PurgeCriteria{AuthorID: "spammer", Links: true}, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Deleted)
	require.Len(t, session.bulkDeleted, 1)
	assert.Equal(t, []string{"1"}, session.bulkDeleted[0])
}

func TestPurgeInvalidRegex(t *testing.T) {
	session := &fakePurgeSession{}
	_, err := Purge(session, "chan", PurgeCriteria{Regex: `(`}, 10)
	assert.Error(t, err)
}

func TestPurgeFallsBackToSingleDeletes(t *testing.T) {
	session := &fakePurgeSession{
		messages: []*discordgo.Message{
			message("1", "a", "x", time.Minute),
			message("2", "a", "x", 2*time.Minute),
			message("3", "a", "x", 3*time.Minute),
		},
		bulkErr:      fmt.Errorf("bulk rejected"),
		singleErrFor: map[string]bool{"2": true},
	}

	result, err := Purge(session, "chan", PurgeCriteria{}, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Matched)
	assert.Equal(t, 2, result.Deleted, "partial success is reported, not lost")
	assert.Equal(t, []string{"1", "3"}, session.singleDeleted)
}

func TestPurgeNothingMatched(t *testing.T) {
	session := &fakePurgeSession{
		messages: []*discordgo.Message{message("1", "a", "keep me", time.Minute)},
	}
	result, err := Purge(session, "chan", PurgeCriteria{NoText: true}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Matched)
	assert.Empty(t, session.bulkDeleted)
}
