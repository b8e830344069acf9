package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLogEvent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.LogEvent(ctx, "alice", "#test", "JOIN", ""))
	require.NoError(t, store.LogEvent(ctx, "alice", "#test", "MESSAGE", "hello"))

	var count int
	err := store.db.QueryRow(`SELECT COUNT(*) FROM event_logs`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpdateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpdateUser(ctx, "alice", "alice", "127.0.0.1:50000"))

	var username string
	err := store.db.QueryRow(`SELECT username FROM users WHERE nickname = ?`, "alice").Scan(&username)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	// Upsert replaces the existing row rather than adding a second one.
	require.NoError(t, store.UpdateUser(ctx, "alice", "alice2", "127.0.0.1:50001"))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM users WHERE nickname = ?`, "alice").Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, store.db.QueryRow(`SELECT username FROM users WHERE nickname = ?`, "alice").Scan(&username))
	assert.Equal(t, "alice2", username)
}

func TestUpdateChannel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpdateChannel(ctx, "#test"))
	require.NoError(t, store.UpdateChannel(ctx, "#test"))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM channels WHERE name = ?`, "#test").Scan(&count))
	assert.Equal(t, 1, count)
}
