package moderation

import (
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snowflakeAt builds a user ID whose embedded creation time is t.
func snowflakeAt(t time.Time) string {
	const discordEpochMs = 1420070400000
	return strconv.FormatInt((t.UnixMilli()-discordEpochMs)<<22, 10)
}

func namedMember(userID, username string, joinedAt time.Time, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:     &discordgo.User{ID: userID, Username: username},
		JoinedAt: joinedAt,
		Roles:    roles,
	}
}

func TestBasePredicatesProtectExemptMembers(t *testing.T) {
	guild := newTestGuild()
	me := newMember(testBotID, "admin")
	now := time.Now().UTC()

	predicates, err := BuildPredicates(guild, me, testModID, MassbanCriteria{}, now)
	require.NoError(t, err)

	bot := newMember("50")
	bot.User.Bot = true
	invoker := newMember(testModID)
	deleted := newMember("51")
	deleted.User.Discriminator = "0000"
	outranked := newMember("52", "admin")
	normal := newMember("53", "low")

	matched := MatchMembers([]*discordgo.Member{bot, invoker, deleted, outranked, normal}, predicates)
	require.Len(t, matched, 1)
	assert.Equal(t, "53", matched[0].User.ID)
}

func TestRegexCriterion(t *testing.T) {
	guild := newTestGuild()
	me := newMember(testBotID, "admin")
	now := time.Now().UTC()

	predicates, err := BuildPredicates(guild, me, testModID, MassbanCriteria{Regex: `^raider_\d+$`}, now)
	require.NoError(t, err)

	raider := namedMember("60", "raider_001", now)
	bystander := namedMember("61", "alice", now)
	matched := MatchMembers([]*discordgo.Member{raider, bystander}, predicates)
	require.Len(t, matched, 1)
	assert.Equal(t, "raider_001", matched[0].User.Username)

	_, err = BuildPredicates(guild, me, testModID, MassbanCriteria{Regex: `(`}, now)
	assert.Error(t, err, "an invalid regex must be rejected before any matching happens")
}

func TestSimilarToCriterion(t *testing.T) {
	guild := newTestGuild()
	me := newMember(testBotID, "admin")
	now := time.Now().UTC()

	predicates, err := BuildPredicates(guild, me, testModID, MassbanCriteria{SimilarTo: "johnsmith"}, now)
	require.NoError(t, err)

	lookalike := namedMember("60", "JohnSmith1", now)
	unrelated := namedMember("61", "zzz", now)
	matched := MatchMembers([]*discordgo.Member{lookalike, unrelated}, predicates)
	require.Len(t, matched, 1)
	assert.Equal(t, "60", matched[0].User.ID)
}

func TestAccountAndJoinWindows(t *testing.T) {
	guild := newTestGuild()
	me := newMember(testBotID, "admin")
	now := time.Now().UTC()

	freshID := snowflakeAt(now.Add(-10 * time.Minute))
	oldID := snowflakeAt(now.Add(-400 * 24 * time.Hour))

	fresh := namedMember(freshID, "fresh", now.Add(-5*time.Minute))
	veteran := namedMember(oldID, "veteran", now.Add(-300*24*time.Hour))

	predicates, err := BuildPredicates(guild, me, testModID, MassbanCriteria{CreatedWithin: time.Hour}, now)
	require.NoError(t, err)
	matched := MatchMembers([]*discordgo.Member{fresh, veteran}, predicates)
	require.Len(t, matched, 1)
	assert.Equal(t, freshID, matched[0].User.ID)

	predicates, err = BuildPredicates(guild, me, testModID, MassbanCriteria{JoinedWithin: time.Hour}, now)
	require.NoError(t, err)
	matched = MatchMembers([]*discordgo.Member{fresh, veteran}, predicates)
	require.Len(t, matched, 1)
	assert.Equal(t, freshID, matched[0].User.ID)
}

func TestJoinedAnchors(t *testing.T) {
	guild := newTestGuild()
	me := newMember(testBotID, "admin")
	now := time.Now().UTC()

	anchor := namedMember("70", "anchor", now.Add(-time.Hour))
	earlier := namedMember("71", "earlier", now.Add(-2*time.Hour))
	later := namedMember("72", "later", now.Add(-30*time.Minute))

	predicates, err := BuildPredicates(guild, me, testModID, MassbanCriteria{JoinedAfter: anchor}, now)
	require.NoError(t, err)
	matched := MatchMembers([]*discordgo.Member{earlier, later}, predicates)
	require.Len(t, matched, 1)
	assert.Equal(t, "72", matched[0].User.ID)

	predicates, err = BuildPredicates(guild, me, testModID, MassbanCriteria{JoinedBefore: anchor}, now)
	require.NoError(t, err)
	matched = MatchMembers([]*discordgo.Member{earlier, later}, predicates)
	require.Len(t, matched, 1)
	assert.Equal(t, "71", matched[0].User.ID)
}

func TestManifestListsEveryMatch(t *testing.T) {
	now := time.Now().UTC()
	matched := []*discordgo.Member{
		namedMember(snowflakeAt(now.Add(-time.Hour)), "raider_001", now),
		namedMember(snowflakeAt(now.Add(-2*time.Hour)), "raider_002", now),
	}

	manifest := string(Manifest("Test Server", matched, now))
	assert.Contains(t, manifest, "Matched members against criteria: 2")
	assert.Contains(t, manifest, "raider_001")
	assert.Contains(t, manifest, "raider_002")
}

func TestMassbanCountsIndividualFailures(t *testing.T) {
	actions, platform, _ := newTestActions(t)
	platform.banFailFor = map[string]bool{"81": true}

	now := time.Now().UTC()
	matched := []*discordgo.Member{
		namedMember("80", "raider_080", now),
		namedMember("81", "raider_081", now),
		namedMember("82", "raider_082", now),
	}

	result := actions.Massban(testGuildID, "Test Server", matched, platform.members[testModID].User, "raid cleanup")
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Banned, "one rejected ban must not abort the batch")
	assert.Len(t, platform.bans, 2)
}

func TestMassbanManifestUsesActionClock(t *testing.T) {
	actions, platform, _ := newTestActions(t)
	frozen := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	actions.Now = func() time.Time { return frozen }

	matched := []*discordgo.Member{namedMember("80", "raider_080", frozen)}
	result := actions.Massban(testGuildID, "Test Server", matched, platform.members[testModID].User, "raid cleanup")

	assert.Contains(t, string(result.Manifest), frozen.Format(time.RFC1123),
		"the summary manifest must be stamped with the action clock")
}
