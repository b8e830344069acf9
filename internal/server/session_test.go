package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSend(t *testing.T) {
	conn := &mockConn{readData: strings.NewReader("")}
	sess := newSession(1, conn)

	require.NoError(t, sess.Send("TEST MESSAGE"))
	assert.Equal(t, "TEST MESSAGE\r\n", conn.writeData.String())
}

func TestSessionIdentity(t *testing.T) {
	conn := &mockConn{readData: strings.NewReader("")}
	sess := newSession(1, conn)

	// Unset halves render as "*".
	assert.Equal(t, "*!*@unknown", sess.identity())
	assert.Equal(t, "*", sess.target())
	assert.False(t, sess.registered())

	sess.nick = "alice"
	assert.Equal(t, "alice!*@unknown", sess.identity())
	assert.Equal(t, "alice", sess.target())
	assert.False(t, sess.registered())

	sess.username = "alice"
	assert.Equal(t, "alice!alice@unknown", sess.identity())
	assert.True(t, sess.registered())
}

func TestSessionString(t *testing.T) {
	conn := &mockConn{readData: strings.NewReader("")}
	sess := newSession(7, conn)

	assert.Equal(t, "unregistered/7", sess.String())

	sess.nick = "alice"
	assert.Equal(t, "alice", sess.String())
}
