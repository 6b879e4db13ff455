/*
Package session hosts one user's ledger state between requests.

PURPOSE:
  The ledger package is pure; something has to own the current State, feed
  it actions, and write it back to storage. A Session does that for a single
  process (the local HTTP host, a CLI, tests).

STATES:
  LoggedOut: no user; only navigation is accepted
  LoggedIn:  a user's State is loaded and every action reduces against it

DISPATCH MODEL:
  Dispatch appends the action to a command queue and drains the queue one
  action at a time. After each successful transition the session runs its
  effects in order:

    1. persist the new State under the user's email
    2. scan for notifications; any found are queued as AddNotifications

  The scan never reduces re-entrantly: its result is just another command,
  handled after the current transition has settled. A failed persist is
  logged and never rolls the transition back.

CONCURRENCY:
  A mutex serializes Login, Logout, Dispatch and Rescan, so concurrent HTTP
  handlers see a single writer.

SEE ALSO:
  - ledger/reducer.go: the transition function
  - ledger/notifications.go: the scan run as an effect
  - api/scheduler.go: periodic Rescan
*/
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/daybook/ledger"
)

var (
	// ErrNotLoggedIn is returned for entity actions while no user is loaded.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidUser is returned by Login when the user has no email.
	ErrInvalidUser = errors.New("user email is required")
)

// Session owns the in-memory state of the logged-in user.
type Session struct {
	mu       sync.Mutex
	store    ledger.Store
	logger   *zap.Logger
	now      func() time.Time
	state    ledger.State
	key      string // storage key of the logged-in user
	loggedIn bool
	queue    []ledger.Action
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now for the notification scan.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New returns a logged-out session backed by store.
func New(store ledger.Store, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		store:  store,
		logger: logger.Named("session"),
		now:    time.Now,
		state:  ledger.NewState(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login loads the user's stored state, or starts a fresh one for a new user,
// and records them as the current user.
func (s *Session) Login(ctx context.Context, user ledger.User) (ledger.State, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return ledger.State{}, ErrInvalidUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.store.Load(ctx, user.Email)
	if err != nil {
		return s.state, err
	}

	var state ledger.State
	if stored != nil {
		state = *stored
		if state.User == nil {
			state.User = &user
		}
		s.logger.Info("user logged in", zap.String("email", user.Email))
	} else {
		state = ledger.NewState(&user)
		s.logger.Info("new user registered", zap.String("email", user.Email))
	}
	state.Screen = ledger.ScreenHome
	state.ScreenPayload = nil

	if err := s.store.SetCurrentUser(ctx, user.Email); err != nil {
		s.logger.Warn("failed to record current user", zap.String("email", user.Email), zap.Error(err))
	}

	s.state = state
	s.key = user.Email
	s.loggedIn = true
	s.settle(ctx, true)
	s.drain(ctx)
	return s.state, nil
}

// Resume restores the last logged-in user, if any. It reports whether a
// session was resumed.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, err := s.store.CurrentUser(ctx)
	if err != nil || email == "" {
		return false, err
	}
	stored, err := s.store.Load(ctx, email)
	if err != nil {
		return false, err
	}
	if stored == nil {
		s.logger.Warn("current user has no stored state", zap.String("email", email))
		return false, s.store.ClearCurrentUser(ctx)
	}

	s.state = *stored
	s.state.Screen = ledger.ScreenHome
	s.state.ScreenPayload = nil
	s.key = email
	s.loggedIn = true
	s.logger.Info("session resumed", zap.String("email", email))

	s.settle(ctx, false)
	s.drain(ctx)
	return true, nil
}

// Logout forgets the in-memory state and the current user. Stored data stays.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loggedIn {
		s.logger.Info("user logged out", zap.String("email", s.key))
	}
	s.state = ledger.NewState(nil)
	s.key = ""
	s.loggedIn = false
	s.queue = nil
	return s.store.ClearCurrentUser(ctx)
}

// =============================================================================
// DISPATCH
// =============================================================================

// Dispatch queues action and drains the queue. It returns the state after
// every queued command, including follow-up notifications, has settled.
// The error is the caller's action's; the state is unchanged when it fails.
func (s *Session) Dispatch(ctx context.Context, action ledger.Action) (ledger.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		if _, ok := action.(ledger.Navigate); !ok {
			return s.state, ErrNotLoggedIn
		}
	}

	s.queue = append(s.queue, action)
	err := s.drain(ctx)
	return s.state, err
}

// Rescan runs the notification pass on its own. Due dates move with the
// clock, so hosts call it periodically. It is a no-op while logged out.
func (s *Session) Rescan(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		return 0, nil
	}
	found := ledger.ScanNotifications(s.state, s.now())
	if len(found) == 0 {
		return 0, nil
	}
	s.queue = append(s.queue, ledger.AddNotifications{Notifications: found})
	return len(found), s.drain(ctx)
}

// drain reduces queued commands until the queue is empty. The first
// command's error is returned; later commands are effects and only logged.
func (s *Session) drain(ctx context.Context) error {
	var first error
	for i := 0; len(s.queue) > 0; i++ {
		action := s.queue[0]
		s.queue = s.queue[1:]

		next, err := ledger.Reduce(s.state, action)
		if err != nil {
			s.logger.Info("action rejected",
				zap.String("action", string(action.Type())),
				zap.Error(err),
			)
			if i == 0 {
				first = err
			}
			continue
		}

		s.state = next
		s.logger.Debug("action applied", zap.String("action", string(action.Type())))
		s.settle(ctx, ledger.MutatesEntities(action))
	}
	return first
}

// settle runs the post-transition effects: persist, then (when the
// transition touched business data) queue any new notifications.
func (s *Session) settle(ctx context.Context, scan bool) {
	if s.loggedIn {
		if err := s.store.Save(ctx, s.key, s.state); err != nil {
			s.logger.Error("failed to persist state", zap.String("email", s.key), zap.Error(err))
		}
	}
	if !s.loggedIn || !scan {
		return
	}
	if found := ledger.ScanNotifications(s.state, s.now()); len(found) > 0 {
		s.logger.Debug("notifications queued", zap.Int("count", len(found)))
		s.queue = append(s.queue, ledger.AddNotifications{Notifications: found})
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state. Callers must treat it as read-only.
func (s *Session) State() ledger.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoggedIn reports whether a user is loaded.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// User returns the logged-in user, or nil.
func (s *Session) User() *ledger.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}
