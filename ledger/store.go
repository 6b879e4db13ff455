/*
store.go - Persistence interface for per-user state

PURPOSE:
  Defines the boundary between the engine and durable storage. The whole
  State of a user is loaded and saved as one document keyed by the user's
  email. The reducer never calls a Store; hosts persist after a transition
  has completed.

CONTRACT:
  - Load returns (nil, nil) when nothing is stored for the key
  - Load runs Migrate, so callers always see the current shape
  - Save overwrites the user's document
  - CurrentUser remembers who was last logged in, so a restarted host can
    resume the session

IMPLEMENTATIONS:
  - ledger/store/memory.go: in-memory, for tests and development
  - store/sqlite/sqlite.go: SQLite
  - store/postgres/postgres.go: PostgreSQL
*/
package ledger

import "context"

// Store persists State per user.
type Store interface {
	// Load returns the stored state for userKey, or nil when absent.
	Load(ctx context.Context, userKey string) (*State, error)

	// Save replaces the stored state for userKey.
	Save(ctx context.Context, userKey string, state State) error

	// CurrentUser returns the key of the last logged-in user, or "".
	CurrentUser(ctx context.Context) (string, error)

	// SetCurrentUser records the logged-in user.
	SetCurrentUser(ctx context.Context, userKey string) error

	// ClearCurrentUser forgets the logged-in user. Stored states stay.
	ClearCurrentUser(ctx context.Context) error
}
