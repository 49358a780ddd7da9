package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maxsklar/newmap.ai.nyu/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		channel VARCHAR(190) NOT NULL,
		user_name VARCHAR(190) NOT NULL,
		created_at BIGINT NOT NULL,
		UNIQUE (channel, user_name)
	)`,
	`CREATE TABLE IF NOT EXISTS commands (
		session_id VARCHAR(36) NOT NULL,
		seq BIGINT NOT NULL,
		body BLOB NOT NULL,
		PRIMARY KEY (session_id, seq)
	)`,
}

// Store persists command logs, one per (channel, user) session.
type Store struct {
	db *sql.DB
}

// OpenStore connects to the configured database and creates the tables if
// they are missing.
func OpenStore(ctx context.Context, cfg config.Store) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}
	dsn := cfg.DSN
	if dsn == "" && driver == config.DriverSQLite {
		dsn = config.DefaultDSN
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}
	if driver == config.DriverSQLite {
		// One connection keeps an in-memory database alive and serializes
		// writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s store: %w", driver, err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// OpenSession returns the id of the session for channel and user, creating
// one if none exists.
func (s *Store) OpenSession(ctx context.Context, channel, user string) (string, error) {
	id, err := s.findSession(ctx, channel, user)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	return s.createSession(ctx, channel, user)
}

func (s *Store) findSession(ctx context.Context, channel, user string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE channel = ? AND user_name = ?`,
		channel, user).Scan(&id)
	return id, err
}

// createSession inserts a new session row. When the insert loses a race
// with another open of the same (channel, user), the winner's id is
// returned.
func (s *Store) createSession(ctx context.Context, channel, user string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, channel, user_name, created_at) VALUES (?, ?, ?, ?)`,
		id, channel, user, time.Now().Unix())
	if err == nil {
		return id, nil
	}
	if existing, findErr := s.findSession(ctx, channel, user); findErr == nil {
		return existing, nil
	}
	return "", fmt.Errorf("failed to create session: %w", err)
}

// Append adds cmd to the end of a session's log and returns its sequence
// number, starting at 1.
func (s *Store) Append(ctx context.Context, sessionID string, cmd Command) (int64, error) {
	body, err := MarshalCommand(cmd)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM commands WHERE session_id = ?`,
		sessionID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate sequence number: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO commands (session_id, seq, body) VALUES (?, ?, ?)`,
		sessionID, seq, body); err != nil {
		return 0, fmt.Errorf("failed to append command: %w", err)
	}
	return seq, tx.Commit()
}

// Commands returns a session's log in order.
func (s *Store) Commands(ctx context.Context, sessionID string) ([]Command, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, body FROM commands WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	defer rows.Close()

	var cmds []Command
	for rows.Next() {
		var seq int64
		var body []byte
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, err
		}
		cmd, err := UnmarshalCommand(body)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", seq, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}
