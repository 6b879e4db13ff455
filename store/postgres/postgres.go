/*
Package postgres provides a PostgreSQL-backed implementation of ledger.Store.

PURPOSE:
  Same document layout as store/sqlite, for deployments that already run
  PostgreSQL. Selected when a database URL is configured.

KEY TABLES:
  user_states: one row per user email, the encoded State (JSONB)
  active_user: a single row naming the logged-in user

CONCURRENCY:
  pgxpool handles connection concurrency; the session serializes writes.

MIGRATION:
  Schema is ensured on New() with CREATE TABLE IF NOT EXISTS.
*/
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warp/daybook/ledger"
)

// Store implements ledger.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection and ensures the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_states (
			email      TEXT PRIMARY KEY,
			state_json JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS active_user (
			id    INTEGER PRIMARY KEY CHECK (id = 1),
			email TEXT NOT NULL
		);
	`)
	return err
}

func (s *Store) Load(ctx context.Context, userKey string) (*ledger.State, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT state_json FROM user_states WHERE email = $1`, userKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	var state ledger.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state for %s: %w", userKey, err)
	}
	migrated := ledger.Migrate(state)
	return &migrated, nil
}

func (s *Store) Save(ctx context.Context, userKey string, state ledger.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_states (email, state_json, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (email) DO UPDATE SET
			state_json = EXCLUDED.state_json,
			updated_at = EXCLUDED.updated_at
	`, userKey, raw)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *Store) CurrentUser(ctx context.Context) (string, error) {
	var email string
	err := s.pool.QueryRow(ctx, `SELECT email FROM active_user WHERE id = 1`).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return email, err
}

func (s *Store) SetCurrentUser(ctx context.Context, userKey string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO active_user (id, email) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
	`, userKey)
	return err
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM active_user`)
	return err
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE TABLE user_states, active_user`)
	return err
}
