package database

import (
	"testing"
	"time"

	"moderation-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerLifecycle(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	due, err := CreateTimer(db, model.Timer{
		GuildID:   "g",
		UserID:    "u",
		Event:     model.EventTempban,
		ExpiresAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)
	assert.NotZero(t, due.ID)

	pending, err := CreateTimer(db, model.Timer{
		GuildID:   "g",
		UserID:    "u",
		Event:     model.EventTimeoutExtend,
		ExpiresAt: now.Add(time.Hour),
		Notes:     model.EncodeTimeoutExtend(now.Add(48 * time.Hour)),
	})
	require.NoError(t, err)
	assert.NotEqual(t, due.ID, pending.ID)

	fired, err := GetDueTimers(db, now)
	require.NoError(t, err)
	require.Len(t, fired, 1, "only elapsed timers fire")
	assert.Equal(t, due.ID, fired[0].ID)
	assert.Equal(t, model.EventTempban, fired[0].Event)

	require.NoError(t, DeleteTimer(db, due.ID, "g"))
	fired, err = GetDueTimers(db, now)
	require.NoError(t, err)
	assert.Empty(t, fired)

	// Idempotent: deleting again is not an error.
	require.NoError(t, DeleteTimer(db, due.ID, "g"))
}

func TestGetTimersByScope(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	for _, timer := range []model.Timer{
		{GuildID: "g", UserID: "u", Event: model.EventTimeoutExtend, ExpiresAt: now.Add(time.Hour)},
		{GuildID: "g", UserID: "u", Event: model.EventTempban, ExpiresAt: now.Add(time.Hour)},
		{GuildID: "g", UserID: "other", Event: model.EventTimeoutExtend, ExpiresAt: now.Add(time.Hour)},
		{GuildID: "other", UserID: "u", Event: model.EventTimeoutExtend, ExpiresAt: now.Add(time.Hour)},
	} {
		_, err := CreateTimer(db, timer)
		require.NoError(t, err)
	}

	timers, err := GetTimersByScope(db, "g", "u", model.EventTimeoutExtend)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "u", timers[0].UserID)
	assert.Equal(t, model.EventTimeoutExtend, timers[0].Event)
}

func TestTimerPayloadSurvivesStorage(t *testing.T) {
	db := newTestDB(t)
	ultimate := time.Now().UTC().Add(40 * 24 * time.Hour).Truncate(time.Second)

	_, err := CreateTimer(db, model.Timer{
		GuildID:   "g",
		UserID:    "u",
		Event:     model.EventTimeoutExtend,
		ExpiresAt: time.Now().UTC().Add(-time.Second),
		Notes:     model.EncodeTimeoutExtend(ultimate),
	})
	require.NoError(t, err)

	fired, err := GetDueTimers(db, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, fired, 1)

	data, err := fired[0].TimeoutExtend()
	require.NoError(t, err)
	assert.Equal(t, ultimate, data.Expiry())
}
