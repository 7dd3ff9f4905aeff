// Package platform carries the one OS-hook surface the Daemon Controller
// needs: sleep/wake notification (spec.md §4.G, §6 subscribe_wake_notifications
// / subscribe_sleep_notifications).
package platform

import (
	"context"
	"time"
)

// SleepWakeEvent represents a system sleep or wake event.
type SleepWakeEvent struct {
	IsSleeping bool      // true = going to sleep, false = waking up
	Timestamp  time.Time
}

// SleepWakeMonitor monitors system sleep/wake events. A real OS-backed
// implementation lives outside this module, same as any other Source
// Provider hook (spec.md §6); this package ships only the interface and a
// manual/no-op implementation for environments with no OS hook available.
type SleepWakeMonitor interface {
	Start(ctx context.Context) error
	Events() <-chan SleepWakeEvent
	Stop() error
}

// ManualMonitor is a SleepWakeMonitor with no OS hook: nothing fires on its
// own, but a caller (e.g. a test, or a CLI "simulate sleep" hook) can push
// events in by calling Trigger directly.
type ManualMonitor struct {
	events chan SleepWakeEvent
}

// NewManualMonitor builds a ManualMonitor ready for Start.
func NewManualMonitor() *ManualMonitor {
	return &ManualMonitor{events: make(chan SleepWakeEvent, 8)}
}

func (m *ManualMonitor) Start(ctx context.Context) error { return nil }

func (m *ManualMonitor) Events() <-chan SleepWakeEvent { return m.events }

func (m *ManualMonitor) Stop() error {
	close(m.events)
	return nil
}

// Trigger injects a sleep or wake event, used by tests and by any future
// CLI-level "simulate sleep/wake" command.
func (m *ManualMonitor) Trigger(isSleeping bool) {
	select {
	case m.events <- SleepWakeEvent{IsSleeping: isSleeping, Timestamp: time.Now()}:
	default:
	}
}
