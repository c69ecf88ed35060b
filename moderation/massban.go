package moderation

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// similarityThreshold is the levenshtein ratio above which two usernames
// are considered matching for the similar-to criterion.
const similarityThreshold = 0.75

// MemberPredicate accepts or rejects a massban candidate. Predicates are
// pure; a candidate is selected iff all predicates accept it.
type MemberPredicate func(*discordgo.Member) bool

// MassbanCriteria are the operator-supplied matching options.
type MassbanCriteria struct {
	Regex         string
	SimilarTo     string
	NoAvatar      bool
	NoRoles       bool
	CreatedWithin time.Duration
	JoinedWithin  time.Duration
	JoinedBefore  *discordgo.Member
	JoinedAfter   *discordgo.Member
}

// BuildPredicates assembles the predicate pipeline: the fixed safety
// predicates (skip bots, the invoker, deleted accounts, and anyone the bot
// cannot outrank) followed by one predicate per supplied criterion.
func BuildPredicates(guild *discordgo.Guild, me *discordgo.Member, invokerID string, criteria MassbanCriteria, now time.Time) ([]MemberPredicate, error) {
	predicates := []MemberPredicate{
		func(m *discordgo.Member) bool { return !m.User.Bot },
		func(m *discordgo.Member) bool { return m.User.ID != invokerID },
		func(m *discordgo.Member) bool { return m.User.Discriminator != "0000" },
		func(m *discordgo.Member) bool { return utils.IsAbove(guild, me, m) },
	}

	if criteria.Regex != "" {
		re, err := regexp.Compile(criteria.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		predicates = append(predicates, func(m *discordgo.Member) bool {
			return re.MatchString(m.User.Username)
		})
	}

	if criteria.SimilarTo != "" {
		target := []rune(strings.ToLower(criteria.SimilarTo))
		predicates = append(predicates, func(m *discordgo.Member) bool {
			name := []rune(strings.ToLower(m.User.Username))
			return levenshtein.RatioForStrings(name, target, levenshtein.DefaultOptions) >= similarityThreshold
		})
	}

	if criteria.NoAvatar {
		predicates = append(predicates, func(m *discordgo.Member) bool {
			return m.User.Avatar == ""
		})
	}

	if criteria.NoRoles {
		predicates = append(predicates, func(m *discordgo.Member) bool {
			return len(m.Roles) == 0
		})
	}

	if criteria.CreatedWithin > 0 {
		cutoff := now.Add(-criteria.CreatedWithin)
		predicates = append(predicates, func(m *discordgo.Member) bool {
			created, err := discordgo.SnowflakeTimestamp(m.User.ID)
			return err == nil && created.After(cutoff)
		})
	}

	if criteria.JoinedWithin > 0 {
		cutoff := now.Add(-criteria.JoinedWithin)
		predicates = append(predicates, func(m *discordgo.Member) bool {
			return m.JoinedAt.After(cutoff)
		})
	}

	if anchor := criteria.JoinedAfter; anchor != nil {
		predicates = append(predicates, func(m *discordgo.Member) bool {
			return m.JoinedAt.After(anchor.JoinedAt)
		})
	}

	if anchor := criteria.JoinedBefore; anchor != nil {
		predicates = append(predicates, func(m *discordgo.Member) bool {
			return m.JoinedAt.Before(anchor.JoinedAt)
		})
	}

	return predicates, nil
}

// MatchMembers returns the candidates accepted by every predicate.
func MatchMembers(members []*discordgo.Member, predicates []MemberPredicate) []*discordgo.Member {
	var matched []*discordgo.Member
	for _, member := range members {
		accepted := true
		for _, predicate := range predicates {
			if !predicate(member) {
				accepted = false
				break
			}
		}
		if accepted {
			matched = append(matched, member)
		}
	}
	return matched
}

// Manifest renders the matched set as a downloadable text listing, one line
// per member. Dry runs hand this to the operator without mutating anything.
func Manifest(guildName string, matched []*discordgo.Member, now time.Time) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Massban session: %s  |  Matched members against criteria: %d\n%s\n\n", guildName, len(matched), now.UTC().Format(time.RFC1123))
	for _, member := range matched {
		created, _ := discordgo.SnowflakeTimestamp(member.User.ID)
		fmt.Fprintf(&sb, "%s (%s)  |  Joined: %s  |  Created: %s\n",
			member.User.Username, member.User.ID,
			member.JoinedAt.UTC().Format(time.RFC3339),
			created.UTC().Format(time.RFC3339))
	}
	return []byte(sb.String())
}

// MassbanResult summarizes a bulk ban run. Manifest is the same listing
// attached to the audit summary.
type MassbanResult struct {
	Banned   int
	Total    int
	Manifest []byte
}

// Massban bans every matched member. Individual failures are counted and
// never abort the batch. The audit publisher is frozen for the guild while
// the batch runs; the summary entry bypasses the freeze.
func (a *Actions) Massban(guildID, guildName string, matched []*discordgo.Member, moderator *discordgo.User, reason string) MassbanResult {
	auditReason := utils.FormatReasonBy(reason, moderator, 512)

	a.Audit.Freeze(guildID)
	defer a.Audit.Unfreeze(guildID)

	result := MassbanResult{Total: len(matched)}
	for _, member := range matched {
		if err := a.Platform.GuildBanCreateWithReason(guildID, member.User.ID, auditReason, 0); err != nil {
			log.Printf("Massban: failed to ban user %s in guild %s: %v", member.User.ID, guildID, err)
			continue
		}
		result.Banned++
	}

	manifest := Manifest(guildName, matched, a.now())
	result.Manifest = manifest
	a.Audit.LogBypass(guildID, "🔨 Massban concluded",
		fmt.Sprintf("Banned **%d/%d** users.\n**Moderator:** `%s (%s)`\n**Reason:** ```%s```",
			result.Banned, result.Total, moderator.Username, moderator.ID, utils.FormatReason(reason, 512)),
		utils.ColorError,
		&discordgo.File{Name: "members_banned.txt", ContentType: "text/plain", Reader: strings.NewReader(string(manifest))})

	return result
}
