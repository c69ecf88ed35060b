package moderation

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"moderation-bot/model"
	"moderation-bot/utils"
	"moderation-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Platform is the slice of the Discord session the moderation layer acts
// through. *discordgo.Session satisfies it; tests substitute a fake.
type Platform interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Scheduler is the durable timer contract the moderation layer schedules
// deferred work through. bot.Scheduler implements it.
type Scheduler interface {
	CreateTimer(expiresAt time.Time, event, guildID, userID, notes string) (model.Timer, error)
	CancelTimer(timerID int64, guildID string) error
}

// Actions executes moderation actions. It is passed explicitly to whatever
// composes the command layer; there is no ambient registry.
type Actions struct {
	Platform  Platform
	DB        *sqlx.DB
	Scheduler Scheduler
	Audit     *utils.AuditLogger
	BotUserID string

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// NewActions wires an action executor over a live session.
func NewActions(session *discordgo.Session, db *sqlx.DB, scheduler Scheduler, audit *utils.AuditLogger, botUserID string) *Actions {
	return &Actions{
		Platform:  session,
		DB:        db,
		Scheduler: scheduler,
		Audit:     audit,
		BotUserID: botUserID,
		Now:       time.Now,
	}
}

func (a *Actions) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

// guildAndBot fetches the guild and the bot's own member, the inputs every
// precondition check needs.
func (a *Actions) guildAndBot(guildID string) (*discordgo.Guild, *discordgo.Member, error) {
	guild, err := a.Platform.Guild(guildID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	me, err := a.Platform.GuildMember(guildID, a.BotUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch bot member in guild %s: %w", guildID, err)
	}
	return guild, me, nil
}

// checkHarm verifies the bot holds perm and outranks the target.
func (a *Actions) checkHarm(guild *discordgo.Guild, me, target *discordgo.Member, perm int64, permName string) error {
	if !utils.HasGuildPermission(guild, me, perm) {
		return &model.MissingPermissionError{Permission: permName}
	}
	if target != nil && !utils.IsAbove(guild, me, target) {
		return &model.HierarchyError{Side: "bot"}
	}
	return nil
}

// checkInvoker verifies the invoking moderator outranks the target. Holding
// the platform permission is not enough to act on someone ranked higher.
func (a *Actions) checkInvoker(guild *discordgo.Guild, moderator, target *discordgo.Member) error {
	if target != nil && !utils.IsAbove(guild, moderator, target) {
		return &model.HierarchyError{Side: "moderator"}
	}
	return nil
}

// preModActions runs before the platform mutation: a best-effort direct
// message to the target. Failures (closed DMs, blocked bot) are swallowed
// and never abort the action.
func (a *Actions) preModActions(guild *discordgo.Guild, target *discordgo.Member, action model.ActionType, reason string) {
	if target == nil {
		return
	}
	settings, err := database.GetModSettings(a.DB, guild.ID)
	if err != nil {
		log.Printf("Failed to load mod settings for guild %s: %v", guild.ID, err)
		settings = model.DefaultModSettings(guild.ID)
	}
	if !settings.DMUsersOnPunish {
		return
	}

	channel, err := a.Platform.UserChannelCreate(target.User.ID)
	if err != nil {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("❗ You have been %s %s", action.Conjugated(), guild.Name),
		Description: fmt.Sprintf("You have been %s **%s**.\n**Reason:** ```%s```", action.Conjugated(), guild.Name, reason),
		Color:       utils.ColorError,
	}
	if _, err := a.Platform.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return
	}
}

// postModActions runs after the platform mutation. Extension point,
// currently a no-op.
func (a *Actions) postModActions(guild *discordgo.Guild, target *discordgo.Member, action model.ActionType, reason string) {
}

// Warn increments the target's warn counter and records a journal entry.
func (a *Actions) Warn(guildID string, member *discordgo.Member, moderator *discordgo.Member, reason string) (model.ActionResult, error) {
	guild, _, err := a.guildAndBot(guildID)
	if err != nil {
		return model.ActionResult{}, err
	}
	if err := a.checkInvoker(guild, moderator, member); err != nil {
		return model.ActionResult{}, err
	}

	user, err := database.GetUser(a.DB, member.User.ID, guildID)
	if err != nil {
		return model.ActionResult{}, err
	}
	user.Warns++
	if err := database.UpdateUser(a.DB, user); err != nil {
		return model.ActionResult{}, err
	}

	reason = utils.FormatReason(reason, 1000)
	a.preModActions(guild, member, model.ActionWarn, reason)
	a.Audit.Log(guildID, "⚠️ Warning issued",
		fmt.Sprintf("**%s** has been warned by **%s**.\n**Warns:** %d\n**Reason:** ```%s```",
			member.User.Username, moderator.User.Username, user.Warns, reason),
		utils.ColorWarn)
	a.postModActions(guild, member, model.ActionWarn, reason)

	if err := AddNote(a.DB, member.User.ID, guildID, fmt.Sprintf("⚠️ **Warned by %s:** %s", moderator.User.Username, reason)); err != nil {
		log.Printf("Failed to add warn journal entry for user %s: %v", member.User.ID, err)
	}

	return model.ActionResult{
		Success:     true,
		Title:       "⚠️ Warning issued",
		Description: fmt.Sprintf("**%s** has been warned by **%s**.\n**Reason:** ```%s```", member.User.Username, moderator.User.Username, reason),
	}, nil
}

// Timeout times the member out until the given expiry. Durations beyond the
// platform's segment cap are broken into chained segments: a capped platform
// timeout plus a timeout_extend timer carrying the ultimate expiry.
func (a *Actions) Timeout(guildID string, member *discordgo.Member, moderator *discordgo.Member, until time.Time, reason string) (model.ActionResult, error) {
	rawReason := utils.FormatReason(reason, 1500)

	guild, me, err := a.guildAndBot(guildID)
	if err != nil {
		return model.ActionResult{}, err
	}
	if err := a.checkHarm(guild, me, member, discordgo.PermissionModerateMembers, "Moderate Members"); err != nil {
		return model.ActionResult{}, err
	}
	if err := a.checkInvoker(guild, moderator, member); err != nil {
		return model.ActionResult{}, err
	}

	a.preModActions(guild, member, model.ActionTimeout, rawReason)

	now := a.now()
	cap := now.Add(model.MaxTimeoutSeconds * time.Second)
	if until.After(cap) {
		_, err := a.Scheduler.CreateTimer(cap, model.EventTimeoutExtend, guildID, member.User.ID, model.EncodeTimeoutExtend(until))
		if err != nil {
			return model.ActionResult{}, err
		}
		if err := a.Platform.GuildMemberTimeout(guildID, member.User.ID, &cap); err != nil {
			return model.ActionResult{}, fmt.Errorf("failed to apply timeout: %w", err)
		}
	} else {
		if err := a.Platform.GuildMemberTimeout(guildID, member.User.ID, &until); err != nil {
			return model.ActionResult{}, fmt.Errorf("failed to apply timeout: %w", err)
		}
	}

	a.postModActions(guild, member, model.ActionTimeout, rawReason)
	if err := AddNote(a.DB, member.User.ID, guildID, fmt.Sprintf("🔇 **Timed out by %s until %s:** %s", moderator.User.Username, until.UTC().Format(time.RFC1123), rawReason)); err != nil {
		log.Printf("Failed to add timeout journal entry for user %s: %v", member.User.ID, err)
	}
	a.Audit.Log(guildID, "🔇 User timed out",
		fmt.Sprintf("**%s** has been timed out by **%s** until %s.\n**Reason:** ```%s```",
			member.User.Username, moderator.User.Username, until.UTC().Format(time.RFC1123), rawReason),
		utils.ColorError)

	return model.ActionResult{
		Success:     true,
		Title:       "🔇 User timed out",
		Description: fmt.Sprintf("**%s** has been timed out until %s.\n**Reason:** ```%s```", member.User.Username, until.UTC().Format(time.RFC1123), rawReason),
	}, nil
}

// RemoveTimeout lifts the member's timeout.
func (a *Actions) RemoveTimeout(guildID string, member *discordgo.Member, moderator *discordgo.Member, reason string) (model.ActionResult, error) {
	reason = utils.FormatReason(reason, 1000)

	if err := a.Platform.GuildMemberTimeout(guildID, member.User.ID, nil); err != nil {
		return model.ActionResult{}, fmt.Errorf("failed to remove timeout: %w", err)
	}

	a.Audit.Log(guildID, "🔉 Timeout removed",
		fmt.Sprintf("**%s**'s timeout was removed by **%s**.\n**Reason:** ```%s```", member.User.Username, moderator.User.Username, reason),
		utils.ColorGreen)

	return model.ActionResult{
		Success:     true,
		Title:       "🔉 Timeout removed",
		Description: fmt.Sprintf("**%s**'s timeout was removed.\n**Reason:** ```%s```", member.User.Username, reason),
	}, nil
}

// BanOptions refines a ban request. Duration and Soft are mutually
// exclusive: a single request resolves to exactly one of permanent, soft,
// or timed.
type BanOptions struct {
	Duration     *time.Time
	Soft         bool
	DaysToDelete int
	Reason       string
}

// Ban bans a user from the guild. With a duration set the ban becomes a
// tempban reverted by a scheduled timer; with Soft set the ban is
// immediately lifted, purging the user's recent messages.
func (a *Actions) Ban(guildID string, user *discordgo.User, moderator *discordgo.Member, opts BanOptions) (model.ActionResult, error) {
	if opts.Duration != nil && opts.Soft {
		return model.ActionResult{}, &model.InvalidActionError{Reason: "ban type cannot be soft when a duration is specified"}
	}

	guild, me, err := a.guildAndBot(guildID)
	if err != nil {
		return model.ActionResult{}, err
	}
	if !utils.HasGuildPermission(guild, me, discordgo.PermissionBanMembers) {
		return model.ActionResult{}, &model.MissingPermissionError{Permission: "Ban Members"}
	}

	// Target may have already left; hierarchy only applies to members.
	target, _ := a.Platform.GuildMember(guildID, user.ID)
	if target != nil && !utils.IsAbove(guild, me, target) {
		return model.ActionResult{}, &model.HierarchyError{Side: "bot"}
	}
	if err := a.checkInvoker(guild, moderator, target); err != nil {
		return model.ActionResult{}, err
	}

	actionType := model.ActionBan
	reason := utils.FormatReason(opts.Reason, 1000)
	switch {
	case opts.Duration != nil:
		actionType = model.ActionTempban
		reason = fmt.Sprintf("[TEMPBAN] Banned until: %s (UTC)  |  %s", opts.Duration.UTC().Format(time.RFC1123), reason)
	case opts.Soft:
		actionType = model.ActionSoftban
		reason = "[SOFTBAN] " + reason
	}
	auditReason := utils.FormatReasonBy(reason, moderator.User, 512)

	a.preModActions(guild, target, actionType, reason)

	if err := a.Platform.GuildBanCreateWithReason(guildID, user.ID, auditReason, opts.DaysToDelete); err != nil {
		log.Printf("Ban of user %s in guild %s failed: %v", user.ID, guildID, err)
		return model.FailedResult("Ban failed"), nil
	}

	if opts.Soft {
		if err := a.Platform.GuildBanDelete(guildID, user.ID); err != nil {
			log.Printf("Softban unban of user %s in guild %s failed: %v", user.ID, guildID, err)
			return model.FailedResult("Softban failed"), nil
		}
	} else if opts.Duration != nil {
		if _, err := a.Scheduler.CreateTimer(*opts.Duration, model.EventTempban, guildID, user.ID, ""); err != nil {
			return model.ActionResult{}, err
		}
	}

	a.postModActions(guild, target, actionType, reason)
	if err := AddNote(a.DB, user.ID, guildID, fmt.Sprintf("🔨 **%s by %s:** %s", actionType, moderator.User.Username, reason)); err != nil {
		log.Printf("Failed to add ban journal entry for user %s: %v", user.ID, err)
	}
	a.Audit.Log(guildID, "🔨 User banned",
		fmt.Sprintf("**%s** has been banned by **%s**.\n**Reason:** ```%s```", user.Username, moderator.User.Username, reason),
		utils.ColorError)

	return model.ActionResult{
		Success:     true,
		Title:       "🔨 User banned",
		Description: fmt.Sprintf("**%s** has been banned.\n**Reason:** ```%s```", user.Username, reason),
	}, nil
}

// Unban lifts a ban.
func (a *Actions) Unban(guildID string, user *discordgo.User, moderator *discordgo.Member, reason string) (model.ActionResult, error) {
	guild, me, err := a.guildAndBot(guildID)
	if err != nil {
		return model.ActionResult{}, err
	}
	if !utils.HasGuildPermission(guild, me, discordgo.PermissionBanMembers) {
		return model.ActionResult{}, &model.MissingPermissionError{Permission: "Ban Members"}
	}

	rawReason := utils.FormatReason(reason, 1000)

	if err := a.Platform.GuildBanDelete(guildID, user.ID); err != nil {
		if isNotFound(err) {
			return model.ActionResult{
				Success:     false,
				Title:       "❌ Unban failed",
				Description: "This user does not appear to be banned!",
			}, nil
		}
		log.Printf("Unban of user %s in guild %s failed: %v", user.ID, guildID, err)
		return model.FailedResult("Unban failed"), nil
	}

	a.Audit.Log(guildID, "🔨 User unbanned",
		fmt.Sprintf("**%s** has been unbanned by **%s**.\n**Reason:** ```%s```", user.Username, moderator.User.Username, rawReason),
		utils.ColorGreen)

	return model.ActionResult{
		Success:     true,
		Title:       "🔨 User unbanned",
		Description: fmt.Sprintf("**%s** has been unbanned.\n**Reason:** ```%s```", user.Username, rawReason),
	}, nil
}

// Kick removes the member from the guild.
func (a *Actions) Kick(guildID string, member *discordgo.Member, moderator *discordgo.Member, reason string) (model.ActionResult, error) {
	rawReason := utils.FormatReason(reason, 1000)
	auditReason := utils.FormatReasonBy(reason, moderator.User, 512)

	guild, me, err := a.guildAndBot(guildID)
	if err != nil {
		return model.ActionResult{}, err
	}
	if err := a.checkHarm(guild, me, member, discordgo.PermissionKickMembers, "Kick Members"); err != nil {
		return model.ActionResult{}, err
	}
	if err := a.checkInvoker(guild, moderator, member); err != nil {
		return model.ActionResult{}, err
	}

	a.preModActions(guild, member, model.ActionKick, rawReason)

	if err := a.Platform.GuildMemberDeleteWithReason(guildID, member.User.ID, auditReason); err != nil {
		log.Printf("Kick of user %s in guild %s failed: %v", member.User.ID, guildID, err)
		return model.FailedResult("Kick failed"), nil
	}

	a.postModActions(guild, member, model.ActionKick, rawReason)
	if err := AddNote(a.DB, member.User.ID, guildID, fmt.Sprintf("🚪 **Kicked by %s:** %s", moderator.User.Username, rawReason)); err != nil {
		log.Printf("Failed to add kick journal entry for user %s: %v", member.User.ID, err)
	}
	a.Audit.Log(guildID, "🚪 User kicked",
		fmt.Sprintf("**%s** has been kicked by **%s**.\n**Reason:** ```%s```", member.User.Username, moderator.User.Username, rawReason),
		utils.ColorError)

	return model.ActionResult{
		Success:     true,
		Title:       "🚪 User kicked",
		Description: fmt.Sprintf("**%s** has been kicked.\n**Reason:** ```%s```", member.User.Username, rawReason),
	}, nil
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
