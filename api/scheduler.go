/*
scheduler.go - Periodic notification rescan

PURPOSE:
  Due-date alerts depend on the clock, not only on data changes: an entry
  due in four days becomes "due soon" tomorrow without any action being
  dispatched. The scheduler asks the session to rescan on an interval.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Scans once immediately on start
  - Goes through Session.Rescan, so the result is an ordinary
    AddNotifications command and is persisted like any other transition
  - Does nothing while no user is logged in

USAGE:
  scheduler := NewNotificationScheduler(sess, logger)
  scheduler.CheckInterval = cfg.ScanInterval
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Rescan endpoint (manual rescan)
  - ledger/notifications.go: ScanNotifications
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/daybook/session"
)

// NotificationScheduler rescans notifications on an interval.
type NotificationScheduler struct {
	Session       *session.Session
	CheckInterval time.Duration
	Enabled       bool

	logger *zap.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewNotificationScheduler creates a new scheduler.
func NewNotificationScheduler(sess *session.Session, logger *zap.Logger) *NotificationScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationScheduler{
		Session:       sess,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		logger:        logger.Named("scheduler"),
	}
}

// Start begins the scheduler. Calling Start on a running scheduler is a no-op.
func (ns *NotificationScheduler) Start() {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if !ns.Enabled {
		ns.logger.Info("disabled, not starting")
		return
	}
	if ns.ticker != nil {
		return
	}

	ns.ticker = time.NewTicker(ns.CheckInterval)
	ns.stop = make(chan struct{})
	ns.wg.Add(1)

	go ns.run(ns.ticker, ns.stop)

	ns.logger.Info("started", zap.Duration("interval", ns.CheckInterval))
}

// Stop stops the scheduler and waits for a scan in progress to finish.
func (ns *NotificationScheduler) Stop() {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.ticker != nil {
		ns.ticker.Stop()
		close(ns.stop)
		ns.wg.Wait()
		ns.ticker = nil
		ns.logger.Info("stopped")
	}
}

func (ns *NotificationScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ns.wg.Done()

	ns.CheckNow(context.Background())

	for {
		select {
		case <-ticker.C:
			ns.CheckNow(context.Background())
		case <-stop:
			return
		}
	}
}

// CheckNow runs one rescan and returns how many notifications it added.
func (ns *NotificationScheduler) CheckNow(ctx context.Context) int {
	added, err := ns.Session.Rescan(ctx)
	if err != nil {
		ns.logger.Error("rescan failed", zap.Error(err))
		return 0
	}
	if added > 0 {
		ns.logger.Info("notifications raised", zap.Int("count", added))
	}
	return added
}
