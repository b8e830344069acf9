package server

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"ircd/internal/config"
	"ircd/internal/parser"
	"ircd/internal/persistence"
)

var errServerFull = errors.New("server is full")

// Registry is the process-wide authoritative directory of accepted
// sessions and open channels. Every mutation of registry, channel or
// session state runs under the single registry mutex, so each inbound
// line is handled to completion before the next one: no other client
// can observe a partial update.
type Registry struct {
	cfg     *config.Config
	logger  *Logger
	metrics *Metrics
	started time.Time

	mu       sync.Mutex
	sessions map[uint64]*Session // every accepted connection, by id
	byNick   map[string]*Session // folded nick → session, registered nicks only
	channels map[string]*Channel // folded name → channel
	nextID   uint64
}

// NewRegistry creates the registry. One exists per server process.
func NewRegistry(cfg *config.Config, store persistence.Store, metrics *Metrics) *Registry {
	return &Registry{
		cfg:      cfg,
		logger:   NewLogger(store),
		metrics:  metrics,
		started:  time.Now(),
		sessions: make(map[uint64]*Session),
		byNick:   make(map[string]*Session),
		channels: make(map[string]*Channel),
		nextID:   1,
	}
}

// Admit accepts a new connection into the registry, allocating its
// session id. It fails when the server is at capacity, in which case
// the caller must refuse the connection; no session state is created.
func (r *Registry) Admit(conn net.Conn) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.cfg.Limits.MaxSessions {
		r.metrics.RefusedTotal.Inc()
		return nil, errServerFull
	}

	id := r.nextID
	r.nextID++

	s := newSession(id, conn)
	r.sessions[id] = s

	r.metrics.ConnectionsTotal.Inc()
	r.metrics.Sessions.Set(float64(len(r.sessions)))
	r.logger.LogEvent(EventConnect, s.String(), "SERVER", fmt.Sprintf("from %s", s.addr))
	return s, nil
}

// HandleLine processes one inbound line from a session: tokenize,
// gate on registration state, dispatch.
func (r *Registry) HandleLine(s *Session, raw string) {
	tokens := parser.Tokenize(raw)
	if len(tokens) == 0 {
		return
	}
	command, args := tokens[0], tokens[1:]

	r.mu.Lock()
	defer r.mu.Unlock()

	if s.gone {
		return
	}
	s.touch()

	// Registration gate: only NICK, USER and QUIT are accepted before
	// the handshake completes.
	if !s.registered() && command != "NICK" && command != "USER" && command != "QUIT" {
		r.sendNumeric(s, ErrNotRegistered, "", "")
		return
	}

	handler, ok := commands[command]
	if !ok {
		log.Printf("WARN: Unknown command from %s: %s", s, command)
		r.sendNumeric(s, ErrUnknownCommand, command, "")
		return
	}
	handler(r, s, args)
}

// DisconnectSession handles the socket-close event for a session.
// Safe to call more than once; only the first call acts.
func (r *Registry) DisconnectSession(s *Session, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnect(s, reason)
}

// nickAvailable reports whether no other session holds the candidate
// nickname, case-insensitively. A session's own current nick does not
// count against it, so a rename to a case variant of itself is legal.
func (r *Registry) nickAvailable(s *Session, candidate string) bool {
	holder, taken := r.byNick[foldName(candidate)]
	return !taken || holder == s
}

// registerFirstNick sets a session's first nickname. Legality and
// availability have been checked by the caller; nobody can see the
// session yet, so there is no notification.
func (r *Registry) registerFirstNick(s *Session, nick string) {
	s.nick = nick
	r.byNick[foldName(nick)] = s
}

// rename changes a registered session's nickname. The viewer set is
// captured before anything mutates and every viewer, the session
// itself included, is told once, with the old identity as the source.
func (r *Registry) rename(s *Session, newNick string) error {
	oldKey := foldName(s.nick)
	if current, ok := r.byNick[oldKey]; !ok || current != s {
		return fmt.Errorf("registry entry for %q does not match session %d", s.nick, s.id)
	}

	viewers := r.viewerSet(s)
	line := fmt.Sprintf(":%s NICK %s", s.identity(), newNick)
	for _, v := range viewers {
		if err := v.Send(line); err != nil {
			log.Printf("ERROR: Failed to send rename notice to %s: %v", v, err)
		}
	}

	delete(r.byNick, oldKey)
	s.nick = newNick
	r.byNick[foldName(newNick)] = s
	return nil
}

// getOrCreateChannel resolves a channel by name, creating it empty on
// first reference. Returns nil for an illegal name.
func (r *Registry) getOrCreateChannel(name string) *Channel {
	if !isValidChannelName(name, r.cfg.Limits.MaxNameLen) {
		return nil
	}
	key := foldName(name)
	if ch, ok := r.channels[key]; ok {
		return ch
	}
	ch := newChannel(r, name, r.cfg.Limits.MaxChannelMembers)
	r.channels[key] = ch
	r.metrics.Channels.Set(float64(len(r.channels)))
	return ch
}

// findChannel resolves an existing channel, case-insensitively.
func (r *Registry) findChannel(name string) *Channel {
	return r.channels[foldName(name)]
}

// findSession resolves a registered session by nickname.
func (r *Registry) findSession(nick string) *Session {
	return r.byNick[foldName(nick)]
}

// closeChannel removes an emptied channel. Channels self-report
// closure here from remove.
func (r *Registry) closeChannel(ch *Channel) {
	delete(r.channels, foldName(ch.name))
	r.metrics.Channels.Set(float64(len(r.channels)))
	log.Printf("INFO: Channel %s closed, last member left", ch.name)
}

// disconnect tears a session down: leave every channel silently,
// broadcast a single QUIT to everyone who shared a channel with it,
// then drop it from the nickname map. A session that never set a nick
// is simply dropped.
func (r *Registry) disconnect(s *Session, reason string) {
	if s.gone {
		return
	}
	s.gone = true

	delete(r.sessions, s.id)
	r.metrics.Sessions.Set(float64(len(r.sessions)))

	if s.nick == "" {
		r.logger.LogEvent(EventDisconnect, s.String(), "SERVER", reason)
		return
	}

	viewers := r.viewerSet(s)
	for ch := range s.channels {
		ch.remove(s, true)
	}

	line := fmt.Sprintf(":%s QUIT :%s", s.identity(), reason)
	for _, v := range viewers {
		if v.id == s.id {
			continue
		}
		if err := v.Send(line); err != nil {
			log.Printf("ERROR: Failed to send quit notice to %s: %v", v, err)
		}
	}

	delete(r.byNick, foldName(s.nick))
	r.logger.LogEvent(EventQuit, s.String(), "SERVER", reason)
}

// viewerSet is the set of sessions that observe identity changes
// about s: itself plus every distinct member of every channel it
// belongs to, deduplicated by session id.
func (r *Registry) viewerSet(s *Session) []*Session {
	seen := map[uint64]struct{}{s.id: {}}
	viewers := []*Session{s}
	for ch := range s.channels {
		for _, m := range ch.memberList() {
			if _, dup := seen[m.id]; dup {
				continue
			}
			seen[m.id] = struct{}{}
			viewers = append(viewers, m)
		}
	}
	return viewers
}

// sendNumeric sends one numeric reply to a session, falling back to
// the standard text for the code.
func (r *Registry) sendNumeric(s *Session, code, middle, text string) {
	line := FormatReply(r.cfg.Server.Name, code, s.target(), middle, text)
	if err := s.Send(line); err != nil {
		log.Printf("ERROR: Failed to send %s reply to %s: %v", code, s, err)
	}
}

// Close flushes the event logger.
func (r *Registry) Close() {
	r.logger.Close()
}
