package server

import (
	"fmt"
	"log"
	"strings"
)

// handlerFunc runs with the registry lock held.
type handlerFunc func(r *Registry, s *Session, args []string)

// commands is the static dispatch table. Keywords are matched
// case-sensitively, as received.
var commands = map[string]handlerFunc{
	"NICK":    handleNick,
	"USER":    handleUser,
	"JOIN":    handleJoin,
	"PART":    handlePart,
	"PRIVMSG": handlePrivMsg,
	"WHOIS":   handleWhois,
	"PING":    handlePing,
	"QUIT":    handleQuit,
}

func handleNick(r *Registry, s *Session, args []string) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		r.sendNumeric(s, ErrNoNicknameGiven, "", "")
		return
	}
	nick := args[0]

	if !isValidNick(nick, r.cfg.Limits.MaxNameLen) {
		r.sendNumeric(s, ErrErroneusNickname, nick, "")
		return
	}
	if !r.nickAvailable(s, nick) {
		r.sendNumeric(s, ErrNicknameInUse, nick, "")
		return
	}

	switch {
	case s.nick == "":
		r.registerFirstNick(s, nick)
		maybeWelcome(r, s)
	default:
		// Live rename, also reachable before registration completes
		// when the client re-sends NICK.
		old := s.String()
		if err := r.rename(s, nick); err != nil {
			log.Printf("ERROR: Rename failed for %s: %v", s, err)
			r.sendNumeric(s, ErrErroneusNickname, nick, "Nickname change failed")
			return
		}
		r.logger.LogEvent(EventNick, old, nick, "")
		if s.registered() {
			r.logger.RecordUser(s.nick, s.username, s.addr)
		}
	}
}

func handleUser(r *Registry, s *Session, args []string) {
	if s.username != "" {
		r.sendNumeric(s, ErrAlreadyRegistered, "", "")
		return
	}
	// A missing or illegal argument is ignored; 461 is not part of
	// this server's reply set.
	if len(args) == 0 || !isValidUsername(args[0], r.cfg.Limits.MaxNameLen) {
		return
	}

	s.username = args[0]
	maybeWelcome(r, s)
}

// maybeWelcome fires the one-time welcome burst when both halves of
// the handshake have just completed.
func maybeWelcome(r *Registry, s *Session) {
	if !s.registered() || s.welcomed {
		return
	}
	s.welcomed = true

	name := r.cfg.Server.Name
	lines := []string{
		fmt.Sprintf(":%s %s %s :Welcome to the Internet Relay Network %s", name, RplWelcome, s.nick, s.identity()),
		fmt.Sprintf(":%s %s %s :Your host is %s, running %s", name, RplYourHost, s.nick, name, r.cfg.Server.Software),
		fmt.Sprintf(":%s %s %s :This server was created %s", name, RplCreated, s.nick, r.started.Format("Mon Jan 02 2006 at 15:04:05 MST")),
		fmt.Sprintf(":%s %s %s CASEMAPPING=ascii CHANTYPES=# CHANLIMIT=#:%d NICKLEN=%d :are supported by this server",
			name, RplISupport, s.nick, r.cfg.Limits.MaxChannelsPerSession, r.cfg.Limits.MaxNameLen),
	}
	for _, line := range lines {
		if err := s.Send(line); err != nil {
			log.Printf("ERROR: Failed to send welcome to %s: %v", s, err)
			return
		}
	}

	log.Printf("INFO: New client registered - Nick: %s, Username: %s, Address: %s", s.nick, s.username, s.addr)
	r.logger.RecordUser(s.nick, s.username, s.addr)
}

func handleJoin(r *Registry, s *Session, args []string) {
	if len(args) == 0 || args[0] == "" {
		// Nothing to join; no state changes.
		return
	}
	name := args[0]

	ch := r.getOrCreateChannel(name)
	if ch == nil {
		r.sendNumeric(s, ErrNoSuchChannel, name, "")
		return
	}

	if ch.hasMember(s) {
		return
	}

	if len(s.channels) >= r.cfg.Limits.MaxChannelsPerSession {
		if ch.size() == 0 {
			r.closeChannel(ch)
		}
		r.sendNumeric(s, ErrTooManyChannels, ch.name, "")
		return
	}

	if err := ch.add(s); err != nil {
		// A freshly created channel cannot be full, so it never
		// lingers empty here.
		r.sendNumeric(s, ErrChannelIsFull, ch.name, "")
		return
	}

	r.logger.LogEvent(EventJoin, s.String(), ch.name, "")
	r.logger.RecordChannel(ch.name)

	// Topics are not retained; always report no topic.
	r.sendNumeric(s, RplNoTopic, ch.name, "")
	nicks := strings.Join(ch.nickList(), " ")
	r.sendNumeric(s, RplNamReply, "= "+ch.name, nicks)
	r.sendNumeric(s, RplEndOfNames, ch.name, "")
}

func handlePart(r *Registry, s *Session, args []string) {
	if len(args) == 0 || args[0] == "" {
		return
	}
	name := args[0]

	ch := r.findChannel(name)
	if ch == nil {
		r.sendNumeric(s, ErrNoSuchChannel, name, "")
		return
	}

	// Not a member: nothing to do.
	if !ch.hasMember(s) {
		return
	}

	ch.remove(s, false)
	r.logger.LogEvent(EventPart, s.String(), name, "")
}

func handlePrivMsg(r *Registry, s *Session, args []string) {
	if len(args) == 0 || args[0] == "" {
		return
	}
	target := args[0]
	text := ""
	if len(args) > 1 {
		text = args[1]
	}

	if strings.HasPrefix(target, "#") {
		ch := r.findChannel(target)
		if ch == nil {
			r.sendNumeric(s, ErrNoSuchChannel, target, "")
			return
		}
		if err := ch.broadcastMessage(s, text); err != nil {
			r.sendNumeric(s, ErrCannotSendToChan, ch.name, "")
			return
		}
		r.metrics.MessagesTotal.Inc()
		r.logger.LogMessage(s.String(), ch.name, text)
		return
	}

	to := r.findSession(target)
	if to == nil {
		r.sendNumeric(s, ErrNoSuchNick, target, "")
		return
	}
	line := fmt.Sprintf(":%s PRIVMSG %s :%s", s.identity(), to.nick, text)
	if err := to.Send(line); err != nil {
		log.Printf("ERROR: Failed to deliver message to %s: %v", to, err)
	}
	r.metrics.MessagesTotal.Inc()
	r.logger.LogMessage(s.String(), to.nick, text)
}

func handleWhois(r *Registry, s *Session, args []string) {
	target := "*"
	if len(args) > 0 {
		target = args[0]
	}

	t := r.findSession(target)
	if t == nil {
		r.sendNumeric(s, ErrNoSuchNick, target, "")
		return
	}

	name := r.cfg.Server.Name
	replies := []string{
		fmt.Sprintf(":%s %s %s %s %s %s * :%s", name, RplWhoisUser, s.target(), t.nick, t.username, t.addr, t.nick),
		fmt.Sprintf(":%s %s %s %s %d :seconds idle", name, RplWhoisIdle, s.target(), t.nick, t.idleSeconds()),
		fmt.Sprintf(":%s %s %s %s :End of /WHOIS list", name, RplEndOfWhois, s.target(), t.nick),
	}
	for _, line := range replies {
		if err := s.Send(line); err != nil {
			log.Printf("ERROR: Failed to send WHOIS reply to %s: %v", s, err)
			return
		}
	}
}

func handlePing(r *Registry, s *Session, args []string) {
	token := s.addr
	if len(args) > 0 && args[0] != "" {
		token = args[0]
	}
	name := r.cfg.Server.Name
	if err := s.Send(fmt.Sprintf(":%s PONG %s :%s", name, name, token)); err != nil {
		log.Printf("ERROR: Failed to send PONG response: %v", err)
	}
}

func handleQuit(r *Registry, s *Session, args []string) {
	reason := ""
	if len(args) > 0 {
		reason = args[0]
	}

	if err := s.Send(fmt.Sprintf("ERROR :Closing Link: %s (%s)", s.target(), reason)); err != nil {
		log.Printf("ERROR: Failed to send closing notice to %s: %v", s, err)
	}
	r.disconnect(s, reason)
	s.conn.Close()
}
