package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RoleButtonPrefix starts every role-button custom ID.
const RoleButtonPrefix = "RB"

// RoleButton is a persisted role-granting button. The button's custom ID
// embeds (entry_id, role_id) so the click handler needs no in-memory state.
type RoleButton struct {
	EntryID   int64  `db:"entry_id"`
	GuildID   string `db:"guild_id"`
	ChannelID string `db:"channel_id"`
	MessageID string `db:"message_id"`
	RoleID    string `db:"role_id"`
	Emoji     string `db:"emoji"`
	Label     string `db:"label"`
	Style     string `db:"style"`
}

// CustomID encodes the button's routing token, "RB:{entry_id}:{role_id}".
func (b *RoleButton) CustomID() string {
	return fmt.Sprintf("%s:%d:%s", RoleButtonPrefix, b.EntryID, b.RoleID)
}

// ParseRoleButtonID decodes a role-button custom ID into its entry and role
// IDs. Returns an error for tokens that are not role-button IDs.
func ParseRoleButtonID(customID string) (entryID int64, roleID string, err error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != RoleButtonPrefix {
		return 0, "", fmt.Errorf("not a role-button custom ID: %q", customID)
	}
	entryID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid entry id in custom ID %q: %w", customID, err)
	}
	if parts[2] == "" {
		return 0, "", fmt.Errorf("empty role id in custom ID %q", customID)
	}
	return entryID, parts[2], nil
}
