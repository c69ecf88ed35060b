package utils

import (
	"fmt"
	"regexp"
)

var (
	messageLinkRegex = regexp.MustCompile(`https?://(?:\w+\.)?discord(?:app)?\.com/channels/(\d+)/(\d+)/(\d+)`)
	urlRegex         = regexp.MustCompile(`https?://\S+`)
	inviteRegex      = regexp.MustCompile(`(?:https?://)?discord(?:app)?\.(?:com/invite|gg)/[a-zA-Z0-9-]+`)
)

// ParseMessageLink extracts (guildID, channelID, messageID) from a message link.
func ParseMessageLink(link string) (guildID, channelID, messageID string, err error) {
	m := messageLinkRegex.FindStringSubmatch(link)
	if m == nil {
		return "", "", "", fmt.Errorf("not a valid message link: %q", link)
	}
	return m[1], m[2], m[3], nil
}

// ContainsURL reports whether the text contains a link.
func ContainsURL(text string) bool {
	return urlRegex.MatchString(text)
}

// ContainsInvite reports whether the text contains a guild invite link.
func ContainsInvite(text string) bool {
	return inviteRegex.MatchString(text)
}
