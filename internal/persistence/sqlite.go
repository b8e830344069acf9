package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore handles all database operations
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// New creates a new database connection and initializes tables
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nickname TEXT UNIQUE,
			username TEXT,
			ip_address TEXT,
			last_seen DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS channels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE,
			last_active DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS event_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME,
			sender TEXT,
			target TEXT,
			event_type TEXT,
			details TEXT
		)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// LogEvent stores a protocol event in the database
func (s *SQLiteStore) LogEvent(ctx context.Context, sender, target, eventType, details string) error {
	query := `INSERT INTO event_logs (timestamp, sender, target, event_type, details)
			 VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, time.Now(), sender, target, eventType, details)
	if err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}
	return nil
}

// UpdateUser stores or updates user information
func (s *SQLiteStore) UpdateUser(ctx context.Context, nickname, username, ipAddr string) error {
	query := `INSERT OR REPLACE INTO users (nickname, username, ip_address, last_seen)
			 VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, nickname, username, ipAddr, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateChannel stores or updates channel information
func (s *SQLiteStore) UpdateChannel(ctx context.Context, name string) error {
	query := `INSERT OR REPLACE INTO channels (name, last_active)
			 VALUES (?, ?)`

	_, err := s.db.ExecContext(ctx, query, name, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	return nil
}
