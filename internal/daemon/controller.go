// Package daemon implements the Daemon Controller (spec.md §4.G): a
// single-threaded cooperative event loop that drives one Sync Engine per
// data kind, with a repeating timer, wake/change hooks, a debounce window
// and an in-flight guard.
package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kestrelvault/mirror/internal/logging"
	"github.com/kestrelvault/mirror/internal/platform"
	"github.com/kestrelvault/mirror/internal/retry"
	"github.com/kestrelvault/mirror/internal/store"
)

// Defaults per spec.md §4.G.
const (
	DefaultPeriodicInterval = 300 * time.Second
	DefaultDebounce         = 30 * time.Second
)

type requestKind string

const (
	requestScheduled requestKind = "scheduled"
	requestWake      requestKind = "wake"
	requestChange    requestKind = "change"
)

// SyncFunc runs one sync pass. mailsync.Engine.Sync and calsync.Engine.Sync
// both return a richer (Result, error); callers adapt them to this shape so
// the Controller stays engine-agnostic (there is one controller per data
// kind, each wired to its own engine).
type SyncFunc func(ctx context.Context) error

// Controller owns the event loop for one daemon kind ("mail" or
// "calendar").
type Controller struct {
	Name             string
	DB               *store.DB
	Sync             SyncFunc
	SleepWake        platform.SleepWakeMonitor
	PeriodicInterval time.Duration
	Debounce         time.Duration
	RetryPolicy      retry.Policy

	log           zerolog.Logger
	requests      chan requestKind
	mu            sync.Mutex
	isSyncing     bool
	lastSyncStart time.Time
}

// NewController builds a Controller with spec-default timing.
func NewController(name string, db *store.DB, sync SyncFunc) *Controller {
	return &Controller{
		Name:             name,
		DB:               db,
		Sync:             sync,
		PeriodicInterval: DefaultPeriodicInterval,
		Debounce:         DefaultDebounce,
		RetryPolicy:      retry.Default(),
		requests:         make(chan requestKind, 8),
	}
}

// TriggerChange enqueues an upstream-change request (spec.md §6
// subscribe_change_notifications). Non-blocking: a request dropped because
// the queue is full will be covered by the next periodic tick.
func (c *Controller) TriggerChange() {
	select {
	case c.requests <- requestChange:
	default:
	}
}

// Run performs one immediate sync, then drives the event loop until ctx is
// cancelled. On cancellation it stops arming new work and waits for any
// in-flight sync to finish before returning (spec.md §4.G lifecycle).
func (c *Controller) Run(ctx context.Context) error {
	c.log = logging.WithComponent("daemon-" + c.Name)

	c.attemptSync(ctx, requestScheduled)

	ticker := time.NewTicker(c.PeriodicInterval)
	defer ticker.Stop()

	var wakeEvents <-chan platform.SleepWakeEvent
	if c.SleepWake != nil {
		if err := c.SleepWake.Start(ctx); err != nil {
			c.log.Warn().Err(err).Msg("sleep/wake monitor failed to start")
		} else {
			wakeEvents = c.SleepWake.Events()
			defer c.SleepWake.Stop()
		}
	}

	timerArmed := true
	for {
		select {
		case <-ticker.C:
			if !timerArmed {
				continue
			}
			c.attemptSync(ctx, requestScheduled)

		case ev, ok := <-wakeEvents:
			if !ok {
				wakeEvents = nil
				continue
			}
			if ev.IsSleeping {
				timerArmed = false
				ticker.Stop()
				c.log.Debug().Msg("system sleeping, timer disarmed")
				continue
			}
			timerArmed = true
			ticker.Reset(c.PeriodicInterval)
			c.attemptSync(ctx, requestWake)

		case <-c.requests:
			c.attemptSync(ctx, requestChange)

		case <-ctx.Done():
			c.log.Info().Msg("shutdown requested, waiting for in-flight sync to finish")
			c.waitForSyncDone()
			return nil
		}
	}
}

// attemptSync applies the in-flight guard and debounce window before
// running a sync (spec.md §4.G).
func (c *Controller) attemptSync(ctx context.Context, kind requestKind) {
	c.mu.Lock()
	if c.isSyncing {
		c.mu.Unlock()
		c.log.Info().Str("request", string(kind)).Msg("sync already in progress, dropping request")
		return
	}
	if !c.lastSyncStart.IsZero() && time.Since(c.lastSyncStart) < c.Debounce {
		c.mu.Unlock()
		c.log.Debug().Str("request", string(kind)).Msg("request debounced")
		return
	}
	c.isSyncing = true
	c.lastSyncStart = time.Now()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.isSyncing = false
		c.mu.Unlock()
	}()

	c.runWithRetry(ctx, kind)
}

func (c *Controller) runWithRetry(ctx context.Context, kind requestKind) {
	attempts, err := retry.Do(ctx, c.RetryPolicy, nil, func(int) error { return c.Sync(ctx) })
	if err != nil {
		c.log.Error().Err(err).Str("request", string(kind)).Int("attempts", attempts).Msg("sync failed")
		return
	}
	c.log.Info().Str("request", string(kind)).Int("attempts", attempts).Msg("sync completed")
}

func (c *Controller) waitForSyncDone() {
	for {
		c.mu.Lock()
		syncing := c.isSyncing
		c.mu.Unlock()
		if !syncing {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}
