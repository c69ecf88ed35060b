package database

import (
	"fmt"
	"time"

	"moderation-bot/model"

	"github.com/jmoiron/sqlx"
)

// CreateTimer persists a new timer and returns it with its assigned id.
func CreateTimer(db *sqlx.DB, timer model.Timer) (model.Timer, error) {
	query := `INSERT INTO timers (guild_id, user_id, event, expires_at, notes)
              VALUES (:guild_id, :user_id, :event, :expires_at, :notes)`

	res, err := db.NamedExec(query, timer)
	if err != nil {
		return timer, fmt.Errorf("failed to insert timer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return timer, fmt.Errorf("failed to read inserted timer id: %w", err)
	}
	timer.ID = id
	return timer, nil
}

// GetDueTimers retrieves all timers whose expiry has elapsed.
func GetDueTimers(db *sqlx.DB, now time.Time) ([]model.Timer, error) {
	var timers []model.Timer
	query := "SELECT * FROM timers WHERE expires_at <= ?"
	if err := db.Select(&timers, query, now); err != nil {
		return nil, fmt.Errorf("failed to get due timers: %w", err)
	}
	return timers, nil
}

// DeleteTimer removes a timer. Deleting an already-removed timer is not an
// error, so cancellation stays idempotent.
func DeleteTimer(db *sqlx.DB, timerID int64, guildID string) error {
	query := "DELETE FROM timers WHERE id = ? AND guild_id = ?"
	if _, err := db.Exec(query, timerID, guildID); err != nil {
		return fmt.Errorf("failed to delete timer %d: %w", timerID, err)
	}
	return nil
}

// GetTimersByScope retrieves all pending timers for one event tag within a
// (guild, user) scope.
func GetTimersByScope(db *sqlx.DB, guildID, userID, event string) ([]model.Timer, error) {
	var timers []model.Timer
	query := "SELECT * FROM timers WHERE guild_id = ? AND user_id = ? AND event = ?"
	if err := db.Select(&timers, query, guildID, userID, event); err != nil {
		return nil, fmt.Errorf("failed to get timers for user %s in guild %s: %w", userID, guildID, err)
	}
	return timers, nil
}
