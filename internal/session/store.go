// Package session persists login sessions locally so they survive process
// restarts, backed by SQLite. Each row binds a session ID to the upstream
// gateway token and the role decided at login; deleting the row is logout.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/logbookhq/logbook/internal/model"
)

// ErrNotFound is returned when a session or setting does not exist.
var ErrNotFound = errors.New("not found")

// Session is one durable login. UpstreamToken is the gateway's opaque
// credential; it never leaves the server.
type Session struct {
	ID            string     `db:"id"`
	Username      string     `db:"username"`
	Role          model.Role `db:"role"`
	UpstreamToken string     `db:"upstream_token"`
	CreatedAt     time.Time  `db:"created_at"`
}

// IsAdmin reports whether the session carries the admin role. The role was
// decided once when the session was created.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == model.RoleAdmin
}

// Store manages durable session state and a small settings table
// (instance ID and similar key/value state).
type Store struct {
	db *sqlx.DB
}

// NewStore creates a session store. Pass empty string for in-memory.
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "logbook.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate session database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'standard',
			upstream_token TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_username ON sessions(username)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new session. CreatedAt is populated on the way in.
func (s *Store) Create(ctx context.Context, sess *Session) error {
	sess.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO sessions (id, username, role, upstream_token, created_at)
		VALUES (:id, :username, :role, :upstream_token, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, q, sess); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get returns a session by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	if err := s.db.GetContext(ctx, &sess, "SELECT * FROM sessions WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session. Deleting a session that does not exist is not
// an error; logout is idempotent.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions older than maxAge and reports how many
// were removed. The gateway expires its tokens on its own schedule; this
// trims rows that cannot possibly still be valid.
func (s *Store) DeleteExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// StartJanitor sweeps expired sessions in the background: once immediately,
// then every interval, until ctx is cancelled. Without the sweep, rows for
// sessions nobody logs out of pile up forever, each holding a stale gateway
// token.
func (s *Store) StartJanitor(ctx context.Context, maxAge, interval time.Duration, logger *slog.Logger) {
	go func() {
		sweep := func() {
			n, err := s.DeleteExpired(ctx, maxAge)
			switch {
			case err != nil && ctx.Err() == nil:
				logger.Warn("session sweep failed", "error", err)
			case n > 0:
				logger.Info("swept expired sessions", "count", n)
			}
		}
		sweep()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sweep()
			}
		}
	}()
}

// Count returns the number of live sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sessions"); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// GetSetting returns a settings value, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting upserts a settings value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	const q = `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
