package moderation

import (
	"log"
	"time"

	"moderation-bot/model"
	"moderation-bot/utils"
	"moderation-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Reconciler keeps long timeouts and tempbans consistent with live platform
// state. Timeouts beyond the platform cap are chained through timeout_extend
// timers; the reconciler re-arms the chain as each segment expires and
// reacts to members leaving, rejoining, or being manually un-timed-out.
//
// Timer delivery is at-least-once, so every handler re-derives its decision
// from the live member and the ultimate expiry carried in the timer payload.
// Re-applying an already-applied timeout is a no-op on the platform side.
type Reconciler struct {
	Platform  Platform
	DB        *sqlx.DB
	Scheduler Scheduler
	BotUserID string

	Now func() time.Time
}

// NewReconciler wires a reconciler over a live session.
func NewReconciler(session *discordgo.Session, db *sqlx.DB, scheduler Scheduler, botUserID string) *Reconciler {
	return &Reconciler{
		Platform:  session,
		DB:        db,
		Scheduler: scheduler,
		BotUserID: botUserID,
		Now:       time.Now,
	}
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// HandleTimeoutExtend consumes a fired timeout_extend timer: the current
// segment has run out and the chain either continues with another capped
// segment, finishes with the exact remaining duration, or is deferred until
// the member rejoins.
func (r *Reconciler) HandleTimeoutExtend(timer model.Timer) {
	data, err := timer.TimeoutExtend()
	if err != nil {
		log.Printf("Dropping malformed timeout_extend timer %d: %v", timer.ID, err)
		return
	}
	expiry := data.Expiry()

	member, err := r.Platform.GuildMember(timer.GuildID, timer.UserID)
	if err != nil || member == nil {
		// Member left mid-chain. Park the ultimate expiry on their record;
		// the rejoin handler re-arms it. First writer wins so a duplicate
		// firing cannot clobber an existing flag.
		r.deferUntilRejoin(timer.GuildID, timer.UserID, expiry)
		return
	}

	guild, err := r.Platform.Guild(timer.GuildID)
	if err != nil {
		log.Printf("Failed to fetch guild %s for timeout extension: %v", timer.GuildID, err)
		return
	}
	me, err := r.Platform.GuildMember(timer.GuildID, r.BotUserID)
	if err != nil {
		log.Printf("Failed to fetch bot member in guild %s for timeout extension: %v", timer.GuildID, err)
		return
	}

	// Hierarchy or permissions regressed since the timeout was issued.
	// There is no invoker to report to; the segment is dropped.
	if !utils.CanHarm(guild, me, member, discordgo.PermissionModerateMembers) {
		return
	}

	r.applySegment(timer.GuildID, timer.UserID, expiry)
}

// HandleTempban consumes a fired tempban timer by unbanning the user.
// A missing guild or an already-lifted ban is tolerated silently.
func (r *Reconciler) HandleTempban(timer model.Timer) {
	if _, err := r.Platform.Guild(timer.GuildID); err != nil {
		return
	}
	if err := r.Platform.GuildBanDelete(timer.GuildID, timer.UserID); err != nil {
		log.Printf("Tempban expiry unban of user %s in guild %s failed: %v", timer.UserID, timer.GuildID, err)
	}
}

// HandleMemberAdd re-applies a deferred timeout when a member who left
// mid-chain rejoins the guild. The stored flag is consumed (cleared) as part
// of this transition, so duplicate join events no-op.
func (r *Reconciler) HandleMemberAdd(guildID string, member *discordgo.Member) {
	user, err := database.GetUser(r.DB, member.User.ID, guildID)
	if err != nil {
		log.Printf("Failed to load user %s on rejoin: %v", member.User.ID, err)
		return
	}
	expiry, ok := user.TimeoutOnJoin()
	if !ok {
		return
	}

	user.ClearTimeoutOnJoin()
	if err := database.UpdateUser(r.DB, user); err != nil {
		log.Printf("Failed to clear timeout flag for user %s: %v", member.User.ID, err)
		return
	}

	if !expiry.After(r.now()) {
		// Expired while they were gone. Nothing to re-apply.
		return
	}

	guild, err := r.Platform.Guild(guildID)
	if err != nil {
		return
	}
	me, err := r.Platform.GuildMember(guildID, r.BotUserID)
	if err != nil {
		return
	}
	if !utils.CanHarm(guild, me, member, discordgo.PermissionModerateMembers) {
		return
	}

	r.applySegment(guildID, member.User.ID, expiry)
}

// HandleMemberUpdate cancels all pending extension timers for a member whose
// timeout was externally cleared, so a stale chain cannot re-impose a
// timeout a moderator intentionally lifted.
func (r *Reconciler) HandleMemberUpdate(guildID string, before, after *discordgo.Member) {
	if before == nil || after == nil {
		return
	}
	if !timeoutCleared(before.CommunicationDisabledUntil, after.CommunicationDisabledUntil) {
		return
	}
	r.CancelExtensions(guildID, after.User.ID)
}

// CancelExtensions removes every pending timeout_extend timer for the
// (guild, user) scope. Cancellation racing an in-flight firing is accepted:
// the fired handler still completes, only future firings are prevented.
func (r *Reconciler) CancelExtensions(guildID, userID string) {
	timers, err := database.GetTimersByScope(r.DB, guildID, userID, model.EventTimeoutExtend)
	if err != nil {
		log.Printf("Failed to list extension timers for user %s in guild %s: %v", userID, guildID, err)
		return
	}
	for _, timer := range timers {
		if err := r.Scheduler.CancelTimer(timer.ID, guildID); err != nil {
			log.Printf("Failed to cancel extension timer %d: %v", timer.ID, err)
		}
	}
}

// applySegment applies the next slice of a timeout targeting the ultimate
// expiry: capped plus a follow-up timer while the remainder exceeds the
// platform cap, exact and final otherwise.
func (r *Reconciler) applySegment(guildID, userID string, expiry time.Time) {
	now := r.now()
	cap := now.Add(model.MaxTimeoutSeconds * time.Second)

	if expiry.After(cap) {
		if _, err := r.Scheduler.CreateTimer(cap, model.EventTimeoutExtend, guildID, userID, model.EncodeTimeoutExtend(expiry)); err != nil {
			log.Printf("Failed to schedule timeout extension for user %s in guild %s: %v", userID, guildID, err)
			return
		}
		if err := r.Platform.GuildMemberTimeout(guildID, userID, &cap); err != nil {
			log.Printf("Failed to extend timeout for user %s in guild %s: %v", userID, guildID, err)
		}
		return
	}

	if err := r.Platform.GuildMemberTimeout(guildID, userID, &expiry); err != nil {
		log.Printf("Failed to apply final timeout segment for user %s in guild %s: %v", userID, guildID, err)
	}
}

// deferUntilRejoin stores the ultimate expiry on the user's record while
// they are outside the guild. No timer is created; the rejoin handler
// re-arms the chain.
func (r *Reconciler) deferUntilRejoin(guildID, userID string, expiry time.Time) {
	user, err := database.GetUser(r.DB, userID, guildID)
	if err != nil {
		log.Printf("Failed to load user %s for deferred timeout: %v", userID, err)
		return
	}
	if !user.SetTimeoutOnJoin(expiry) {
		return
	}
	if err := database.UpdateUser(r.DB, user); err != nil {
		log.Printf("Failed to store deferred timeout for user %s: %v", userID, err)
	}
}

func timeoutCleared(before, after *time.Time) bool {
	if before == nil || after != nil {
		return false
	}
	return true
}
