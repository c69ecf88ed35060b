package model

import (
	"encoding/json"
	"time"
)

// FlagTimeoutOnJoin stores the ultimate expiry (unix seconds) of a chained
// timeout whose target left the guild before the chain completed.
const FlagTimeoutOnJoin = "timeout_on_join"

// DBUser is the per-(guild, user) moderation record. Rows are created lazily
// on first reference and never hard-deleted.
type DBUser struct {
	UserID    string `db:"user_id"`
	GuildID   string `db:"guild_id"`
	Warns     int    `db:"warns"`
	NotesJSON string `db:"notes"`
	FlagsJSON string `db:"flags"`
}

// Notes returns the journal entries in insertion order.
func (u *DBUser) Notes() []string {
	if u.NotesJSON == "" {
		return nil
	}
	var notes []string
	if err := json.Unmarshal([]byte(u.NotesJSON), &notes); err != nil {
		return nil
	}
	return notes
}

// SetNotes replaces the journal entries.
func (u *DBUser) SetNotes(notes []string) {
	if notes == nil {
		notes = []string{}
	}
	raw, _ := json.Marshal(notes)
	u.NotesJSON = string(raw)
}

// AppendNote adds a journal entry to the end of the log.
func (u *DBUser) AppendNote(note string) {
	u.SetNotes(append(u.Notes(), note))
}

func (u *DBUser) flags() map[string]json.RawMessage {
	flags := make(map[string]json.RawMessage)
	if u.FlagsJSON != "" {
		json.Unmarshal([]byte(u.FlagsJSON), &flags)
	}
	return flags
}

func (u *DBUser) setFlags(flags map[string]json.RawMessage) {
	raw, _ := json.Marshal(flags)
	u.FlagsJSON = string(raw)
}

// TimeoutOnJoin returns the deferred timeout expiry, if one is stored.
func (u *DBUser) TimeoutOnJoin() (time.Time, bool) {
	raw, ok := u.flags()[FlagTimeoutOnJoin]
	if !ok {
		return time.Time{}, false
	}
	var unix int64
	if err := json.Unmarshal(raw, &unix); err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}

// SetTimeoutOnJoin stores a deferred timeout expiry. The first writer wins;
// an already-present flag is left untouched.
func (u *DBUser) SetTimeoutOnJoin(expiry time.Time) bool {
	flags := u.flags()
	if _, ok := flags[FlagTimeoutOnJoin]; ok {
		return false
	}
	raw, _ := json.Marshal(expiry.Unix())
	flags[FlagTimeoutOnJoin] = raw
	u.setFlags(flags)
	return true
}

// ClearTimeoutOnJoin removes the deferred timeout flag.
func (u *DBUser) ClearTimeoutOnJoin() {
	flags := u.flags()
	delete(flags, FlagTimeoutOnJoin)
	u.setFlags(flags)
}
