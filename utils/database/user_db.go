package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"moderation-bot/model"

	"github.com/jmoiron/sqlx"
)

// GetUser returns the moderation record for a (user, guild) pair. Records
// are created lazily: an unknown pair yields a zero-valued record that is
// persisted on the first UpdateUser call.
func GetUser(db *sqlx.DB, userID, guildID string) (*model.DBUser, error) {
	var user model.DBUser
	query := "SELECT * FROM users WHERE user_id = ? AND guild_id = ?"
	err := db.Get(&user, query, userID, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.DBUser{UserID: userID, GuildID: guildID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s in guild %s: %w", userID, guildID, err)
	}
	return &user, nil
}

// UpdateUser upserts the moderation record.
func UpdateUser(db *sqlx.DB, user *model.DBUser) error {
	query := `INSERT INTO users (user_id, guild_id, warns, notes, flags)
              VALUES (:user_id, :guild_id, :warns, :notes, :flags)
              ON CONFLICT(user_id, guild_id) DO UPDATE
              SET warns = excluded.warns, notes = excluded.notes, flags = excluded.flags`

	if _, err := db.NamedExec(query, user); err != nil {
		return fmt.Errorf("failed to update user %s in guild %s: %w", user.UserID, user.GuildID, err)
	}
	return nil
}

// SweepExpiredTimeoutFlags clears timeout_on_join flags whose expiry already
// passed. Such flags belong to members who never rejoined; left behind they
// would be misread on a much later rejoin.
func SweepExpiredTimeoutFlags(db *sqlx.DB, now time.Time) (int, error) {
	var users []model.DBUser
	query := "SELECT * FROM users WHERE flags LIKE '%' || ? || '%'"
	if err := db.Select(&users, query, model.FlagTimeoutOnJoin); err != nil {
		return 0, fmt.Errorf("failed to list flagged users: %w", err)
	}

	cleared := 0
	for i := range users {
		user := &users[i]
		expiry, ok := user.TimeoutOnJoin()
		if !ok || expiry.After(now) {
			continue
		}
		user.ClearTimeoutOnJoin()
		if err := UpdateUser(db, user); err != nil {
			log.Printf("Failed to clear stale timeout flag for user %s in guild %s: %v", user.UserID, user.GuildID, err)
			continue
		}
		cleared++
	}
	return cleared, nil
}
