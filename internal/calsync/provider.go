// Package calsync implements the Calendar Sync Engine (spec.md §4.F):
// pulling calendars, events, attendees and reminders into the mirror through
// an abstract Source Provider, expanding recurrences assumed already done
// upstream.
package calsync

import (
	"context"
	"time"
)

// CalendarSnapshot is one row from Provider.ListCalendars.
type CalendarSnapshot struct {
	UpstreamID   string
	Title        string
	SourceType   string
	Color        string
	IsSubscribed bool
	IsImmutable  bool
}

// AttendeeSnapshot is one attendee of an EventSnapshot.
type AttendeeSnapshot struct {
	Name           string
	Email          string
	ResponseStatus string
	IsOrganizer    bool
	IsOptional     bool
}

// EventSnapshot is a single upstream read of an event or event occurrence,
// handed to the engine by Provider.ListEvents. The provider is assumed to
// have already expanded recurrences into concrete occurrences (spec.md
// §4.F step 5).
type EventSnapshot struct {
	UpstreamEventID   string
	ExternalID        string
	Summary           string
	Description       string
	Location          string
	URL               string
	StartUTC          time.Time
	EndUTC            time.Time
	StartTZ           string
	EndTZ             string
	IsAllDay          bool
	RecurrenceRule    string
	MasterUpstreamID  string // empty for the master itself
	OccurrenceUTC     *time.Time
	Status            string
	CreatedUTC        time.Time
	UpdatedUTC        time.Time
	Organizer         *AttendeeSnapshot
	Attendees         []AttendeeSnapshot
}

// ReminderSnapshot is one row from Provider.ListReminders.
type ReminderSnapshot struct {
	UpstreamID      string
	CalendarUpstreamID string
	Title           string
	Notes           string
	DueUTC          *time.Time
	Priority        int
	IsCompleted     bool
	CompletedUTC    *time.Time
}

// AccessResult is the outcome of Provider.RequestAccess.
type AccessResult struct {
	Granted bool
	Error   error
}

// Window is the sync range resolved at the start of every pass (spec.md
// §4.F step 2, glossary "Window").
type Window struct {
	StartUTC time.Time
	EndUTC   time.Time
}

// Provider is the calendar-side Source Provider (spec.md §6). Events and
// reminders may have independent grants; a reminder permission failure must
// not fail the overall sync (spec.md §4.F step 7).
type Provider interface {
	RequestAccess(ctx context.Context) (AccessResult, error)
	ListCalendars(ctx context.Context) ([]CalendarSnapshot, error)
	ListEvents(ctx context.Context, calendarUpstreamID string, window Window) ([]EventSnapshot, error)
	ListReminders(ctx context.Context, window Window) ([]ReminderSnapshot, error)

	// SubscribeChangeNotifications arms cb to fire when the upstream
	// calendar store reports a change. SubscribeWakeNotifications and
	// SubscribeSleepNotifications arm the daemon's sleep/wake hooks
	// (spec.md §6). Neither the Engine nor the Daemon Controller calls
	// these: cmd/locald passes Controller.TriggerChange to
	// SubscribeChangeNotifications, and nothing in this module calls the
	// wake/sleep hooks, since the controller takes sleep/wake events from a
	// platform.SleepWakeMonitor instead.
	SubscribeChangeNotifications(cb func())
	SubscribeWakeNotifications(cb func())
	SubscribeSleepNotifications(cb func())
}
