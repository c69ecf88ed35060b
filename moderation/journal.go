package moderation

import (
	"fmt"
	"time"

	"moderation-bot/utils"
	"moderation-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// maxNoteLength bounds a single journal entry.
const maxNoteLength = 256

// AddNote appends a journal entry to the user's moderation record. Entries
// are date-prefixed and truncated; they are never edited or removed
// individually.
func AddNote(db *sqlx.DB, userID, guildID, note string) error {
	user, err := database.GetUser(db, userID, guildID)
	if err != nil {
		return err
	}
	note = utils.FormatReason(note, maxNoteLength)
	user.AppendNote(fmt.Sprintf("%s: %s", utils.FormatDate(time.Now()), note))
	return database.UpdateUser(db, user)
}

// GetNotes returns the user's journal in insertion order, or nil when the
// journal is empty.
func GetNotes(db *sqlx.DB, userID, guildID string) ([]string, error) {
	user, err := database.GetUser(db, userID, guildID)
	if err != nil {
		return nil, err
	}
	return user.Notes(), nil
}

// ClearNotes empties the user's journal. The record itself survives.
func ClearNotes(db *sqlx.DB, userID, guildID string) error {
	user, err := database.GetUser(db, userID, guildID)
	if err != nil {
		return err
	}
	user.SetNotes([]string{})
	return database.UpdateUser(db, user)
}

// GetWarns returns the user's warn counter.
func GetWarns(db *sqlx.DB, userID, guildID string) (int, error) {
	user, err := database.GetUser(db, userID, guildID)
	if err != nil {
		return 0, err
	}
	return user.Warns, nil
}

// ClearWarns resets the user's warn counter and journals the reset.
func ClearWarns(db *sqlx.DB, userID, guildID, moderatorName, reason string) error {
	user, err := database.GetUser(db, userID, guildID)
	if err != nil {
		return err
	}
	user.Warns = 0
	if err := database.UpdateUser(db, user); err != nil {
		return err
	}
	return AddNote(db, userID, guildID, fmt.Sprintf("⚠️ **Warnings cleared by %s:** %s", moderatorName, utils.FormatReason(reason, maxNoteLength)))
}
