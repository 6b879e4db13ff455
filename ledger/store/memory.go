// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/warp/daybook/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps each user's state as an encoded document, so callers never
// share slices with the store and round trips behave like the durable stores.
type Memory struct {
	mu      sync.RWMutex
	states  map[string][]byte
	current string

	// FailSaves makes Save return an error; used to exercise hosts that
	// must survive persistence failures.
	FailSaves bool
}

func NewMemory() *Memory {
	return &Memory{states: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, userKey string) (*ledger.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.states[userKey]
	if !ok {
		return nil, nil
	}
	var s ledger.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", userKey, err)
	}
	migrated := ledger.Migrate(s)
	return &migrated, nil
}

func (m *Memory) Save(_ context.Context, userKey string, state ledger.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves {
		return fmt.Errorf("save state for %s: store unavailable", userKey)
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", userKey, err)
	}
	m.states[userKey] = raw
	return nil
}

func (m *Memory) CurrentUser(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

func (m *Memory) SetCurrentUser(_ context.Context, userKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = userKey
	return nil
}

func (m *Memory) ClearCurrentUser(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = ""
	return nil
}

// Users returns the keys with stored state.
func (m *Memory) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.states))
	for k := range m.states {
		keys = append(keys, k)
	}
	return keys
}

// Seed stores raw JSON for a user, bypassing encoding. Tests use it to
// load documents written by older versions.
func (m *Memory) Seed(userKey string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userKey] = append([]byte(nil), raw...)
}
