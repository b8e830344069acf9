package persistence

import "context"

// Store defines the interface for persistence operations
type Store interface {
	// Close closes the underlying database connection
	Close() error

	// LogEvent stores a protocol event (join, part, quit, rename, message)
	LogEvent(ctx context.Context, sender, target, eventType, details string) error

	// UpdateUser stores or updates user information
	UpdateUser(ctx context.Context, nickname, username, ipAddr string) error

	// UpdateChannel stores or updates channel information
	UpdateChannel(ctx context.Context, name string) error
}
