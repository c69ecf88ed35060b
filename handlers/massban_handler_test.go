package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMassbanSessionTakeIsOneShot(t *testing.T) {
	sessions := newMassbanSessions()
	sessions.put("token", &massbanSession{InvokerID: "mod", CreatedAt: time.Now()})

	first := sessions.take("token")
	require.NotNil(t, first)
	assert.Equal(t, "mod", first.InvokerID)

	assert.Nil(t, sessions.take("token"), "a second take must lose the race")
}

func TestMassbanSessionExpires(t *testing.T) {
	sessions := newMassbanSessions()
	sessions.put("token", &massbanSession{
		InvokerID: "mod",
		CreatedAt: time.Now().Add(-massbanSessionTTL - time.Minute),
	})

	assert.Nil(t, sessions.take("token"))
}

func TestMassbanSessionUnknownToken(t *testing.T) {
	sessions := newMassbanSessions()
	assert.Nil(t, sessions.take("missing"))
}
