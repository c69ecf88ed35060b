package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// NoReason is substituted when a moderator provides no reason.
const NoReason = "No reason provided."

// FormatReason normalizes a free-text reason: trims whitespace, substitutes
// a placeholder when empty, and truncates to maxLength.
func FormatReason(reason string, maxLength int) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = NoReason
	}
	return Truncate(reason, maxLength)
}

// FormatReasonBy prefixes the reason with moderator attribution, then
// truncates to maxLength. Used for the platform's native audit log, which
// enforces a 512 character cap.
func FormatReasonBy(reason string, moderator *discordgo.User, maxLength int) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = NoReason
	}
	if moderator != nil {
		reason = fmt.Sprintf("%s (%s): %s", moderator.Username, moderator.ID, reason)
	}
	return Truncate(reason, maxLength)
}

// Truncate shortens s to at most maxLength runes, appending "..." when cut.
func Truncate(s string, maxLength int) string {
	if maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// ParseDuration parses a compact duration string such as "30m", "12h",
// "26d" or "1w2d12h". Units: s, m, h, d, w.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var total time.Duration
	var num strings.Builder
	matched := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 's' || r == 'm' || r == 'h' || r == 'd' || r == 'w':
			if num.Len() == 0 {
				return 0, fmt.Errorf("invalid duration %q: unit %q without a value", s, string(r))
			}
			n, err := strconv.ParseInt(num.String(), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", s, err)
			}
			switch r {
			case 's':
				total += time.Duration(n) * time.Second
			case 'm':
				total += time.Duration(n) * time.Minute
			case 'h':
				total += time.Duration(n) * time.Hour
			case 'd':
				total += time.Duration(n) * 24 * time.Hour
			case 'w':
				total += time.Duration(n) * 7 * 24 * time.Hour
			}
			num.Reset()
			matched = true
		default:
			return 0, fmt.Errorf("invalid duration %q: unexpected character %q", s, string(r))
		}
	}
	if num.Len() != 0 {
		return 0, fmt.Errorf("invalid duration %q: trailing value without a unit", s)
	}
	if !matched || total <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return total, nil
}

// FormatDate renders a timestamp the way journal entries are prefixed.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
