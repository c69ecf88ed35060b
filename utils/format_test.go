package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReason(t *testing.T) {
	assert.Equal(t, NoReason, FormatReason("", 100))
	assert.Equal(t, NoReason, FormatReason("   ", 100))
	assert.Equal(t, "spam", FormatReason("  spam  ", 100))

	long := FormatReason(strings.Repeat("a", 50), 10)
	assert.Len(t, long, 10)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestFormatReasonBy(t *testing.T) {
	moderator := &discordgo.User{ID: "42", Username: "mod"}
	assert.Equal(t, "mod (42): spam", FormatReasonBy("spam", moderator, 512))
	assert.Equal(t, "mod (42): "+NoReason, FormatReasonBy("", moderator, 512))
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo", 5))
	assert.Equal(t, "hé...", Truncate("héllo world", 5))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"30s":    30 * time.Second,
		"30m":    30 * time.Minute,
		"12h":    12 * time.Hour,
		"40d":    40 * 24 * time.Hour,
		"2w":     14 * 24 * time.Hour,
		"1w2d3h": (7*24 + 2*24 + 3) * time.Hour,
		" 12H ":  12 * time.Hour,
	}
	for input, expected := range cases {
		got, err := ParseDuration(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, got, "input %q", input)
	}

	for _, input := range []string{"", "h", "12", "12x", "12h7", "-5m"} {
		_, err := ParseDuration(input)
		assert.Error(t, err, "input %q", input)
	}
}
