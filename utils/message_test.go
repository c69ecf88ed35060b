package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageLink(t *testing.T) {
	guildID, channelID, messageID, err := ParseMessageLink("https://discord.com/channels/111/222/333")
	require.NoError(t, err)
	assert.Equal(t, "111", guildID)
	assert.Equal(t, "222", channelID)
	assert.Equal(t, "333", messageID)

	_, _, _, err = ParseMessageLink("https://example.com/channels/111/222/333")
	assert.Error(t, err)

	_, _, _, err = ParseMessageLink("not a link")
	assert.Error(t, err)
}

func TestContainsURL(t *testing.T) {
	assert.True(t, ContainsURL("check https://example.com out"))
	assert.False(t, ContainsURL("no links here"))
}

func TestContainsInvite(t *testing.T) {
	assert.True(t, ContainsInvite("join discord.gg/abc123"))
	assert.True(t, ContainsInvite("join https://discord.com/invite/abc123"))
	assert.False(t, ContainsInvite("https://example.com/invite/abc"))
}
