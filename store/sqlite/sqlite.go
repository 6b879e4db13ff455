/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists each user's complete State as one JSON document, plus the key of
  the last logged-in user so a restarted host can resume the session. In
  production the same layout runs on PostgreSQL (store/postgres).

KEY TABLES:
  user_states:  one row per user email, the encoded State and its save time
  active_user:  a single row naming the logged-in user

DOCUMENT FORMAT:
  The stored JSON is the same shape the backup file uses for its
  collections, so documents written by older versions (flat item quantities,
  unlinked "db-" entries) load through ledger.Migrate.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The session already serializes
  writes; the lock covers hosts that read state concurrently.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./daybook.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  sess := session.New(store, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - ledger/store.go: interface definition
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/daybook/ledger"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- One document per user, keyed by login email
	CREATE TABLE IF NOT EXISTS user_states (
		email TEXT PRIMARY KEY,
		state_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Single-row table: who was logged in last
	CREATE TABLE IF NOT EXISTS active_user (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		email TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STATE STORE (ledger.Store interface)
// =============================================================================

// Load returns the stored state for a user, or nil if none is stored.
func (s *Store) Load(ctx context.Context, userKey string) (*ledger.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT state_json FROM user_states WHERE email = ?",
		userKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	var state ledger.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode state for %s: %w", userKey, err)
	}
	migrated := ledger.Migrate(state)
	return &migrated, nil
}

// Save replaces the stored state for a user.
func (s *Store) Save(ctx context.Context, userKey string, state ledger.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	query := `
		INSERT INTO user_states (email, state_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			state_json = excluded.state_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, userKey, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// CurrentUser returns the last logged-in user, or "".
func (s *Store) CurrentUser(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var email string
	err := s.db.QueryRowContext(ctx, "SELECT email FROM active_user WHERE id = 1").Scan(&email)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return email, err
}

// SetCurrentUser records the logged-in user.
func (s *Store) SetCurrentUser(ctx context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_user (id, email) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email
	`, userKey)
	return err
}

// ClearCurrentUser forgets the logged-in user. Stored states are kept.
func (s *Store) ClearCurrentUser(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM active_user")
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"user_states", "active_user"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
