package server

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	errAlreadyMember = errors.New("already a channel member")
	errChannelFull   = errors.New("channel is full")
	errNotMember     = errors.New("not a channel member")
	errEmptyMessage  = errors.New("empty message")
)

// Channel represents a named group of member sessions. Membership is
// keyed by session id, never by nickname. A channel with zero members
// does not exist: the last remove closes it in the registry.
//
// All methods assume the registry lock is held.
type Channel struct {
	reg        *Registry
	name       string // display case preserved; lookups fold
	members    map[uint64]*Session
	order      []uint64 // insertion order, for name-list replies
	maxMembers int
	created    time.Time
}

func newChannel(reg *Registry, name string, maxMembers int) *Channel {
	return &Channel{
		reg:        reg,
		name:       name,
		members:    make(map[uint64]*Session),
		maxMembers: maxMembers,
		created:    time.Now(),
	}
}

// Name returns the channel's display name.
func (ch *Channel) Name() string { return ch.name }

func (ch *Channel) size() int { return len(ch.members) }

func (ch *Channel) hasMember(s *Session) bool {
	_, ok := ch.members[s.id]
	return ok
}

// add inserts the session and announces the join to every member,
// including the new one. No mutation happens when the session is
// already a member or the channel is at capacity.
func (ch *Channel) add(s *Session) error {
	if ch.hasMember(s) {
		return errAlreadyMember
	}
	if len(ch.members) >= ch.maxMembers {
		return errChannelFull
	}

	ch.members[s.id] = s
	ch.order = append(ch.order, s.id)
	s.channels[ch] = struct{}{}

	ch.rawSendAll(fmt.Sprintf(":%s JOIN %s", s.identity(), ch.name))
	return nil
}

// remove drops the session from the channel. Unless silent, a PART
// notice goes to all members, the departing one included, before the
// membership mutates. Removing the last member closes the channel.
func (ch *Channel) remove(s *Session, silent bool) {
	if !ch.hasMember(s) {
		return
	}

	if !silent {
		ch.rawSendAll(fmt.Sprintf(":%s PART %s", s.identity(), ch.name))
	}

	delete(ch.members, s.id)
	delete(s.channels, ch)
	for i, id := range ch.order {
		if id == s.id {
			ch.order = append(ch.order[:i], ch.order[i+1:]...)
			break
		}
	}

	if len(ch.members) == 0 {
		ch.reg.closeChannel(ch)
	}
}

// broadcastMessage delivers a channel message from sender to every
// other member.
func (ch *Channel) broadcastMessage(sender *Session, text string) error {
	if !ch.hasMember(sender) {
		return errNotMember
	}
	if strings.TrimSpace(text) == "" {
		return errEmptyMessage
	}

	line := fmt.Sprintf(":%s PRIVMSG %s :%s", sender.identity(), ch.name, text)
	for _, m := range ch.memberList() {
		if m.id == sender.id {
			continue
		}
		if err := m.Send(line); err != nil {
			log.Printf("ERROR: Failed to send message to client %s: %v", m, err)
		}
	}
	return nil
}

// rawSendAll writes one line to every member, the originator included.
func (ch *Channel) rawSendAll(line string) {
	for _, m := range ch.memberList() {
		if err := m.Send(line); err != nil {
			log.Printf("ERROR: Failed to send message to client %s: %v", m, err)
		}
	}
}

// memberList returns the members in insertion order.
func (ch *Channel) memberList() []*Session {
	members := make([]*Session, 0, len(ch.members))
	for _, id := range ch.order {
		if m, ok := ch.members[id]; ok {
			members = append(members, m)
		}
	}
	return members
}

// nickList returns the member nicknames in insertion order.
func (ch *Channel) nickList() []string {
	nicks := make([]string, 0, len(ch.members))
	for _, m := range ch.memberList() {
		nicks = append(nicks, m.nick)
	}
	return nicks
}
