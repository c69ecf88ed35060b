package moderation

import (
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"moderation-bot/model"
	"moderation-bot/utils"
	"moderation-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID  = "100"
	testBotID    = "1"
	testModID    = "2"
	testTargetID = "3"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Init(filepath.Join(t.TempDir(), "moderation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type timeoutCall struct {
	UserID string
	Until  *time.Time
}

type banCall struct {
	UserID string
	Reason string
	Days   int
}

// fakePlatform implements Platform for tests. Members are keyed by user ID;
// a missing key behaves like a user outside the guild.
type fakePlatform struct {
	guild   *discordgo.Guild
	members map[string]*discordgo.Member

	timeouts []timeoutCall
	bans     []banCall
	unbans   []string
	kicks    []string

	banErr     error
	banFailFor map[string]bool
	unbanErr   error
	kickErr    error
}

func (f *fakePlatform) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if f.guild == nil || f.guild.ID != guildID {
		return nil, fmt.Errorf("unknown guild %s", guildID)
	}
	return f.guild, nil
}

func (f *fakePlatform) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	member, ok := f.members[userID]
	if !ok {
		return nil, fmt.Errorf("unknown member %s", userID)
	}
	return member, nil
}

func (f *fakePlatform) GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error {
	f.timeouts = append(f.timeouts, timeoutCall{UserID: userID, Until: until})
	return nil
}

func (f *fakePlatform) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	if f.banErr != nil {
		return f.banErr
	}
	if f.banFailFor[userID] {
		return fmt.Errorf("ban of %s rejected", userID)
	}
	f.bans = append(f.bans, banCall{UserID: userID, Reason: reason, Days: days})
	return nil
}

func (f *fakePlatform) GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error {
	if f.unbanErr != nil {
		return f.unbanErr
	}
	f.unbans = append(f.unbans, userID)
	return nil
}

func (f *fakePlatform) GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error {
	if f.kickErr != nil {
		return f.kickErr
	}
	f.kicks = append(f.kicks, userID)
	return nil
}

func (f *fakePlatform) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return nil, fmt.Errorf("dms closed")
}

func (f *fakePlatform) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return nil, fmt.Errorf("dms closed")
}

// fakeScheduler records created timers and hands out sequential ids.
type fakeScheduler struct {
	created   []model.Timer
	cancelled []int64
	nextID    int64
}

func (f *fakeScheduler) CreateTimer(expiresAt time.Time, event, guildID, userID, notes string) (model.Timer, error) {
	f.nextID++
	timer := model.Timer{
		ID:        f.nextID,
		GuildID:   guildID,
		UserID:    userID,
		Event:     event,
		ExpiresAt: expiresAt.UTC(),
		Notes:     notes,
	}
	f.created = append(f.created, timer)
	return timer, nil
}

func (f *fakeScheduler) CancelTimer(timerID int64, guildID string) error {
	f.cancelled = append(f.cancelled, timerID)
	return nil
}

func newTestGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      testGuildID,
		Name:    "Test Server",
		OwnerID: "999",
		Roles: []*discordgo.Role{
			{ID: "admin", Position: 10, Permissions: discordgo.PermissionAdministrator},
			{ID: "low", Position: 1},
		},
	}
}

func newMember(userID string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:  &discordgo.User{ID: userID, Username: "user-" + userID},
		Roles: roles,
	}
}

// newTestActions wires an Actions over fakes. The bot member holds the admin
// role so hierarchy and permission checks pass unless a test arranges
// otherwise.
func newTestActions(t *testing.T) (*Actions, *fakePlatform, *fakeScheduler) {
	t.Helper()
	platform := &fakePlatform{
		guild: newTestGuild(),
		members: map[string]*discordgo.Member{
			testBotID:    newMember(testBotID, "admin"),
			testModID:    newMember(testModID, "admin"),
			testTargetID: newMember(testTargetID, "low"),
		},
	}
	scheduler := &fakeScheduler{}
	actions := &Actions{
		Platform:  platform,
		DB:        newTestDB(t),
		Scheduler: scheduler,
		Audit:     utils.NewAuditLogger(nil, ""),
		BotUserID: testBotID,
		Now:       time.Now,
	}
	return actions, platform, scheduler
}

func notFoundErr() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
}
