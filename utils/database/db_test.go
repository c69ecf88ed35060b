package database

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "moderation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
