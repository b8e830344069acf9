package server

import (
	"context"
	"log"
	"sync"
	"time"

	"ircd/internal/persistence"
)

// EventType represents different types of protocol events
type EventType string

const (
	EventConnect    EventType = "CONNECT"
	EventDisconnect EventType = "DISCONNECT"
	EventJoin       EventType = "JOIN"
	EventPart       EventType = "PART"
	EventQuit       EventType = "QUIT"
	EventNick       EventType = "NICK"
	EventMessage    EventType = "MESSAGE"
)

// Logger handles event logging to the console and the store. Store
// writes run on a background goroutine so handlers never block on
// disk; a full queue drops the store write, never the handler.
type Logger struct {
	store  persistence.Store
	tasks  chan func(context.Context)
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewLogger creates a new Logger instance
func NewLogger(store persistence.Store) *Logger {
	l := &Logger{
		store: store,
		tasks: make(chan func(context.Context), 256),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Logger) run() {
	for task := range l.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		task(ctx)
		cancel()
	}
	close(l.done)
}

func (l *Logger) enqueue(task func(context.Context)) {
	if l.store == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.tasks <- task:
	default:
		log.Printf("WARN: Event log queue full, dropping store write")
	}
}

// Close drains pending store writes.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.tasks)
	<-l.done
}

// LogEvent logs a general protocol event
func (l *Logger) LogEvent(eventType EventType, who, target, details string) {
	log.Printf("INFO: %s: %s -> %s (%s)", eventType, who, target, details)

	l.enqueue(func(ctx context.Context) {
		if err := l.store.LogEvent(ctx, who, target, string(eventType), details); err != nil {
			log.Printf("ERROR: Failed to log %s event: %v", eventType, err)
		}
	})
}

// LogMessage logs chat messages (PRIVMSG)
func (l *Logger) LogMessage(from, target, content string) {
	log.Printf("INFO: PRIVMSG from %s to %s: %s", from, target, content)

	l.enqueue(func(ctx context.Context) {
		if err := l.store.LogEvent(ctx, from, target, string(EventMessage), content); err != nil {
			l.LogError("Failed to log message", err)
		}
	})
}

// RecordUser mirrors a completed registration into the store
func (l *Logger) RecordUser(nickname, username, addr string) {
	l.enqueue(func(ctx context.Context) {
		if err := l.store.UpdateUser(ctx, nickname, username, addr); err != nil {
			l.LogError("Failed to store user info", err)
		}
	})
}

// RecordChannel mirrors channel activity into the store
func (l *Logger) RecordChannel(name string) {
	l.enqueue(func(ctx context.Context) {
		if err := l.store.UpdateChannel(ctx, name); err != nil {
			l.LogError("Failed to store channel info", err)
		}
	})
}

// LogError logs error events
func (l *Logger) LogError(msg string, err error) {
	log.Printf("ERROR: %s: %v", msg, err)
}
