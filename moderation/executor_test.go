package moderation

import (
	"testing"
	"time"

	"moderation-bot/model"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutWithinCap(t *testing.T) {
	actions, platform, scheduler := newTestActions(t)
	target := platform.members[testTargetID]
	moderator := platform.members[testModID]

	until := time.Now().UTC().Add(3 * 24 * time.Hour)
	result, err := actions.Timeout(testGuildID, target, moderator, until, "spam")
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, platform.timeouts, 1)
	require.NotNil(t, platform.timeouts[0].Until)
	assert.Equal(t, until, *platform.timeouts[0].Until)
	assert.Empty(t, scheduler.created, "a timeout within the cap must not create a timer")
}

func TestTimeoutBeyondCapChainsSegment(t *testing.T) {
	actions, platform, scheduler := newTestActions(t)
	target := platform.members[testTargetID]
	moderator := platform.members[testModID]

	now := time.Now().UTC()
	until := now.Add(60 * 24 * time.Hour)
	result, err := actions.Timeout(testGuildID, target, moderator, until, "long ban-adjacent timeout")
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, scheduler.created, 1)
	timer := scheduler.created[0]
	assert.Equal(t, model.EventTimeoutExtend, timer.Event)
	assert.Equal(t, testTargetID, timer.UserID)
	assert.WithinDuration(t, now.Add(model.MaxTimeoutSeconds*time.Second), timer.ExpiresAt, 2*time.Second)

	data, err := timer.TimeoutExtend()
	require.NoError(t, err)
	assert.Equal(t, until.Unix(), data.Expiry().Unix(), "timer payload must carry the ultimate expiry")

	require.Len(t, platform.timeouts, 1)
	require.NotNil(t, platform.timeouts[0].Until)
	assert.WithinDuration(t, now.Add(model.MaxTimeoutSeconds*time.Second), *platform.timeouts[0].Until, 2*time.Second,
		"the applied segment must be capped")
}

func TestWarnIncrementsAndJournals(t *testing.T) {
	actions, platform, _ := newTestActions(t)
	target := platform.members[testTargetID]
	moderator := platform.members[testModID]

	for i := 0; i < 2; i++ {
		result, err := actions.Warn(testGuildID, target, moderator, "rude")
		require.NoError(t, err)
		assert.True(t, result.Success)
	}

	warns, err := GetWarns(actions.DB, testTargetID, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, 2, warns)

	notes, err := GetNotes(actions.DB, testTargetID, testGuildID)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestBanRejectsSoftWithDuration(t *testing.T) {
	actions, platform, scheduler := newTestActions(t)
	moderator := platform.members[testModID]

	until := time.Now().Add(time.Hour)
	_, err := actions.Ban(testGuildID, platform.members[testTargetID].User, moderator, BanOptions{
		Duration: &until,
		Soft:     true,
	})

	var invalidErr *model.InvalidActionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Empty(t, platform.bans, "an invalid request must not reach the platform")
	assert.Empty(t, platform.unbans)
	assert.Empty(t, scheduler.created)
}

func TestBanPlatformFailureIsFailedResult(t *testing.T) {
	actions, platform, _ := newTestActions(t)
	platform.banErr = notFoundErr()

	result, err := actions.Ban(testGuildID, platform.members[testTargetID].User, platform.members[testModID], BanOptions{})
	require.NoError(t, err, "platform failures surface as a failed result, not an error")
	assert.False(t, result.Success)
}

func TestSoftbanBansThenUnbans(t *testing.T) {
	actions, platform, scheduler := newTestActions(t)

	result, err := actions.Ban(testGuildID, platform.members[testTargetID].User, platform.members[testModID], BanOptions{
		Soft:         true,
		DaysToDelete: 1,
		Reason:       "message cleanup",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, platform.bans, 1)
	assert.Equal(t, 1, platform.bans[0].Days)
	assert.Contains(t, platform.bans[0].Reason, "[SOFTBAN]")
	assert.Equal(t, []string{testTargetID}, platform.unbans)
	assert.Empty(t, scheduler.created)
}

func TestTempbanSchedulesRevert(t *testing.T) {
	actions, platform, scheduler := newTestActions(t)

	until := time.Now().UTC().Add(48 * time.Hour)
	result, err := actions.Ban(testGuildID, platform.members[testTargetID].User, platform.members[testModID], BanOptions{
		Duration: &until,
		Reason:   "cooling off",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, platform.bans, 1)
	assert.Contains(t, platform.bans[0].Reason, "[TEMPBAN]")

	require.Len(t, scheduler.created, 1)
	timer := scheduler.created[0]
	assert.Equal(t, model.EventTempban, timer.Event)
	assert.Equal(t, until, timer.ExpiresAt)
}

func TestUnbanOfNotBannedUser(t *testing.T) {
	actions, platform, _ := newTestActions(t)
	platform.unbanErr = notFoundErr()

	result, err := actions.Unban(testGuildID, &discordgo.User{ID: "555", Username: "stranger"}, platform.members[testModID], "")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Description, "does not appear to be banned")
}

func TestKick(t *testing.T) {
	actions, platform, _ := newTestActions(t)

	result, err := actions.Kick(testGuildID, platform.members[testTargetID], platform.members[testModID], "bye")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{testTargetID}, platform.kicks)
}

func TestModeratorBelowTargetIsRejected(t *testing.T) {
	actions, platform, scheduler := newTestActions(t)
	platform.guild.Roles = append(platform.guild.Roles,
		&discordgo.Role{ID: "top", Position: 30, Permissions: discordgo.PermissionAdministrator},
		&discordgo.Role{ID: "high", Position: 20},
	)
	platform.members[testBotID] = newMember(testBotID, "top")
	platform.members[testTargetID] = newMember(testTargetID, "high")
	target := platform.members[testTargetID]
	moderator := platform.members[testModID]

	var hierarchyErr *model.HierarchyError

	_, err := actions.Timeout(testGuildID, target, moderator, time.Now().Add(time.Hour), "")
	require.ErrorAs(t, err, &hierarchyErr)
	assert.Equal(t, "moderator", hierarchyErr.Side)

	_, err = actions.Warn(testGuildID, target, moderator, "")
	require.ErrorAs(t, err, &hierarchyErr)

	_, err = actions.Ban(testGuildID, target.User, moderator, BanOptions{})
	require.ErrorAs(t, err, &hierarchyErr)
	assert.Equal(t, "moderator", hierarchyErr.Side)

	_, err = actions.Kick(testGuildID, target, moderator, "")
	require.ErrorAs(t, err, &hierarchyErr)

	assert.Empty(t, platform.timeouts, "a rejected action must not touch the platform")
	assert.Empty(t, platform.bans)
	assert.Empty(t, platform.kicks)
	assert.Empty(t, scheduler.created)
}

func TestBanBlockedByHierarchy(t *testing.T) {
	actions, platform, _ := newTestActions(t)
	platform.guild.Roles = append(platform.guild.Roles,
		&discordgo.Role{ID: "mod", Position: 5, Permissions: discordgo.PermissionBanMembers},
		&discordgo.Role{ID: "high", Position: 20},
	)
	platform.members[testBotID] = newMember(testBotID, "mod")
	platform.members[testTargetID] = newMember(testTargetID, "high")

	_, err := actions.Ban(testGuildID, platform.members[testTargetID].User, platform.members[testModID], BanOptions{})
	var hierarchyErr *model.HierarchyError
	require.ErrorAs(t, err, &hierarchyErr)
	assert.Empty(t, platform.bans)
}
