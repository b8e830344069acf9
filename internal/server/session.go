package server

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

// Session represents one connected client's mutable protocol state.
//
// A session moves through the registration states unregistered →
// nick-set / user-set → registered; it is registered once both the
// nickname and the username are set. The numeric id is assigned at
// accept time, never changes and never gets reused, which is why
// channel membership is keyed by id: a nickname rename never has to
// touch any channel.
type Session struct {
	id       uint64
	conn     net.Conn
	writer   *bufio.Writer
	wmu      sync.Mutex
	addr     string
	nick     string
	username string
	channels map[*Channel]struct{}

	lastActive time.Time
	welcomed   bool
	gone       bool
}

func newSession(id uint64, conn net.Conn) *Session {
	addr := "unknown"
	if a := conn.RemoteAddr(); a != nil {
		addr = a.String()
	}
	s := &Session{
		id:         id,
		conn:       conn,
		writer:     bufio.NewWriter(conn),
		addr:       addr,
		channels:   make(map[*Channel]struct{}),
		lastActive: time.Now(),
	}
	log.Printf("INFO: New client connection from %s", addr)
	return s
}

// Send writes one outbound line to the client, appending CRLF.
func (s *Session) Send(line string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if _, err := s.writer.WriteString(line + "\r\n"); err != nil {
		return fmt.Errorf("write to %s: %w", s, err)
	}
	return s.writer.Flush()
}

// registered reports whether the two-step handshake is complete.
func (s *Session) registered() bool {
	return s.nick != "" && s.username != ""
}

// identity returns the "<nick>!<user>@<addr>" source string used as
// the prefix of lines originating from this session.
func (s *Session) identity() string {
	nick, user := s.nick, s.username
	if nick == "" {
		nick = "*"
	}
	if user == "" {
		user = "*"
	}
	return fmt.Sprintf("%s!%s@%s", nick, user, s.addr)
}

// target is the nick slot of numeric replies sent to this session,
// "*" until a nickname is set.
func (s *Session) target() string {
	if s.nick == "" {
		return "*"
	}
	return s.nick
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

func (s *Session) idleSeconds() int {
	return int(time.Since(s.lastActive).Seconds())
}

// String returns a string representation of the session.
func (s *Session) String() string {
	if s.nick == "" {
		return fmt.Sprintf("unregistered/%d", s.id)
	}
	return s.nick
}
