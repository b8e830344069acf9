package server

import (
	"testing"

	"ircd/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	alice, aliceConn := registerSession(t, srv, "alice")
	reg.HandleLine(alice, "JOIN #test")

	ch := reg.findChannel("#test")
	require.NotNil(t, ch)
	require.Equal(t, 1, ch.size())

	aliceConn.writeData.Reset()
	reg.HandleLine(alice, "JOIN #test")

	assert.Equal(t, 1, ch.size(), "joining twice must not change membership")
	assert.NotContains(t, aliceConn.writeData.String(), "JOIN", "no duplicate JOIN broadcast")
}

func TestJoinBroadcastReachesAllMembers(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	alice, aliceConn := registerSession(t, srv, "alice")
	bob, bobConn := registerSession(t, srv, "bob")
	reg.HandleLine(alice, "JOIN #test")

	aliceConn.writeData.Reset()
	reg.HandleLine(bob, "JOIN #test")

	// Existing member and the joiner both see the JOIN.
	assert.Contains(t, aliceConn.writeData.String(), "JOIN #test")
	assert.Contains(t, bobConn.writeData.String(), "JOIN #test")

	// The joiner also gets no-topic and the name list.
	out := bobConn.writeData.String()
	assert.Contains(t, out, " 331 bob #test ")
	assert.Contains(t, out, " 353 bob = #test :alice bob")
	assert.Contains(t, out, " 366 bob #test ")
}

func TestChannelCapacity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Limits.MaxChannelMembers = 2
	srv := New(cfg, &mockStore{})
	reg := srv.registry

	alice, _ := registerSession(t, srv, "alice")
	bob, _ := registerSession(t, srv, "bob")
	carol, carolConn := registerSession(t, srv, "carol")

	reg.HandleLine(alice, "JOIN #full")
	reg.HandleLine(bob, "JOIN #full")

	ch := reg.findChannel("#full")
	require.Equal(t, 2, ch.size())

	reg.HandleLine(carol, "JOIN #full")

	assert.Equal(t, 2, ch.size(), "membership unchanged at capacity")
	out := carolConn.writeData.String()
	assert.Contains(t, out, " 471 ")
	assert.NotContains(t, out, "JOIN #full", "no JOIN broadcast on refused join")
}

func TestMaxChannelsPerSession(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Limits.MaxChannelsPerSession = 2
	srv := New(cfg, &mockStore{})
	reg := srv.registry

	alice, aliceConn := registerSession(t, srv, "alice")
	reg.HandleLine(alice, "JOIN #one")
	reg.HandleLine(alice, "JOIN #two")

	aliceConn.writeData.Reset()
	reg.HandleLine(alice, "JOIN #three")

	assert.Contains(t, aliceConn.writeData.String(), " 405 ")
	assert.Nil(t, reg.findChannel("#three"), "refused join must not leave an empty channel behind")
	assert.Len(t, alice.channels, 2)
}

func TestPartLastMemberClosesChannel(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	alice, aliceConn := registerSession(t, srv, "alice")
	reg.HandleLine(alice, "JOIN #test")

	aliceConn.writeData.Reset()
	reg.HandleLine(alice, "PART #test")

	// PART goes to all members, the departing one included, before
	// removal; then the empty channel closes.
	assert.Contains(t, aliceConn.writeData.String(), "PART #test")
	assert.Nil(t, reg.findChannel("#test"))

	// Rejoining creates a fresh channel with no stale members.
	reg.HandleLine(alice, "JOIN #test")
	ch := reg.findChannel("#test")
	require.NotNil(t, ch)
	assert.Equal(t, 1, ch.size())
	assert.Equal(t, []string{"alice"}, ch.nickList())
}

func TestPartBroadcastReachesRemainingMembers(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	alice, _ := registerSession(t, srv, "alice")
	bob, bobConn := registerSession(t, srv, "bob")
	reg.HandleLine(alice, "JOIN #test")
	reg.HandleLine(bob, "JOIN #test")

	bobConn.writeData.Reset()
	reg.HandleLine(alice, "PART #test")

	assert.Contains(t, bobConn.writeData.String(), ":alice!alice@")
	assert.Contains(t, bobConn.writeData.String(), "PART #test")
	assert.Equal(t, 1, reg.findChannel("#test").size())
}

func TestBroadcastMessageExcludesSender(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	alice, aliceConn := registerSession(t, srv, "alice")
	bob, bobConn := registerSession(t, srv, "bob")
	reg.HandleLine(alice, "JOIN #test")
	reg.HandleLine(bob, "JOIN #test")

	aliceConn.writeData.Reset()
	bobConn.writeData.Reset()
	reg.HandleLine(alice, "PRIVMSG #test :hello there")

	assert.Contains(t, bobConn.writeData.String(), "PRIVMSG #test :hello there")
	assert.NotContains(t, aliceConn.writeData.String(), "hello there", "sender must not receive its own message")
}

func TestChannelMessageRequiresMembership(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	alice, _ := registerSession(t, srv, "alice")
	bob, bobConn := registerSession(t, srv, "bob")
	reg.HandleLine(alice, "JOIN #test")

	reg.HandleLine(bob, "PRIVMSG #test :hi")
	assert.Contains(t, bobConn.writeData.String(), " 404 ")

	bobConn.writeData.Reset()
	reg.HandleLine(bob, "PRIVMSG #nowhere :hi")
	assert.Contains(t, bobConn.writeData.String(), " 403 ")
}

func TestEmptyMessageRejected(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	alice, aliceConn := registerSession(t, srv, "alice")
	bob, bobConn := registerSession(t, srv, "bob")
	reg.HandleLine(alice, "JOIN #test")
	reg.HandleLine(bob, "JOIN #test")

	aliceConn.writeData.Reset()
	bobConn.writeData.Reset()
	reg.HandleLine(alice, "PRIVMSG #test :   ")

	assert.Contains(t, aliceConn.writeData.String(), " 404 ")
	assert.Empty(t, bobConn.writeData.String())
}

func TestNickListInsertionOrder(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.registry

	for _, nick := range []string{"alice", "bob", "carol"} {
		sess, _ := registerSession(t, srv, nick)
		reg.HandleLine(sess, "JOIN #test")
	}

	ch := reg.findChannel("#test")
	require.NotNil(t, ch)
	assert.Equal(t, []string{"alice", "bob", "carol"}, ch.nickList())
}
