package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timer event tags. The scheduler dispatches a fired timer to the handler
// registered under its tag.
const (
	EventTimeoutExtend = "timeout_extend"
	EventTempban       = "tempban"
)

// MaxTimeoutSeconds is the longest single timeout the platform accepts.
// Timeouts beyond this are broken into chained segments of this length.
const MaxTimeoutSeconds = 2246400

// Timer is a persisted scheduled event. It is a plan, not current state:
// the platform remains the source of truth for whether a member is
// currently timed out.
type Timer struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	Event     string    `db:"event"`
	ExpiresAt time.Time `db:"expires_at"`
	Notes     string    `db:"notes"`
}

// TimeoutExtendData is the payload carried by timeout_extend timers.
type TimeoutExtendData struct {
	// ExpiresAt is the ultimate expiry of the chained timeout, unix seconds.
	ExpiresAt int64 `json:"expires_at"`
}

// Expiry returns the ultimate expiry as a UTC time.
func (d TimeoutExtendData) Expiry() time.Time {
	return time.Unix(d.ExpiresAt, 0).UTC()
}

// EncodeTimeoutExtend serializes a timeout_extend payload for the notes column.
func EncodeTimeoutExtend(expiry time.Time) string {
	raw, _ := json.Marshal(TimeoutExtendData{ExpiresAt: expiry.Unix()})
	return string(raw)
}

// TimeoutExtend decodes the timer's payload. It is an error to call this on
// a timer whose event is not timeout_extend.
func (t *Timer) TimeoutExtend() (TimeoutExtendData, error) {
	var data TimeoutExtendData
	if t.Event != EventTimeoutExtend {
		return data, fmt.Errorf("timer %d has event %q, not %q", t.ID, t.Event, EventTimeoutExtend)
	}
	if err := json.Unmarshal([]byte(t.Notes), &data); err != nil {
		return data, fmt.Errorf("failed to decode timeout_extend payload for timer %d: %w", t.ID, err)
	}
	return data, nil
}
