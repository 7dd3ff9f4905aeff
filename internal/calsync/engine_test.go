package calsync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kestrelvault/mirror/internal/store"
)

type fakeProvider struct {
	calendars    []CalendarSnapshot
	events       map[string][]EventSnapshot
	reminders    []ReminderSnapshot
	remindersErr error
}

func (p *fakeProvider) RequestAccess(ctx context.Context) (AccessResult, error) {
	return AccessResult{Granted: true}, nil
}

func (p *fakeProvider) ListCalendars(ctx context.Context) ([]CalendarSnapshot, error) {
	return p.calendars, nil
}

func (p *fakeProvider) ListEvents(ctx context.Context, calendarUpstreamID string, window Window) ([]EventSnapshot, error) {
	return p.events[calendarUpstreamID], nil
}

func (p *fakeProvider) ListReminders(ctx context.Context, window Window) ([]ReminderSnapshot, error) {
	return p.reminders, p.remindersErr
}

func (p *fakeProvider) SubscribeChangeNotifications(cb func()) {}
func (p *fakeProvider) SubscribeWakeNotifications(cb func())   {}
func (p *fakeProvider) SubscribeSleepNotifications(cb func())  {}

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "calendar.db"), store.CalendarMigrations)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSyncFiltersSiriSuggestionsAndEmptyUpstreamID(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	provider := &fakeProvider{
		calendars: []CalendarSnapshot{
			{UpstreamID: "work", Title: "Work"},
			{UpstreamID: "", Title: "ghost"},
			{UpstreamID: "siri-1", Title: "Siri Suggestions"},
		},
		events: map[string][]EventSnapshot{
			"work": {
				{UpstreamEventID: "e1", Summary: "Standup", StartUTC: now, EndUTC: now.Add(30 * time.Minute), CreatedUTC: now, UpdatedUTC: now},
			},
		},
	}

	engine := NewEngine(db, provider)
	result, err := engine.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.CalendarsProcessed != 1 {
		t.Fatalf("CalendarsProcessed = %d, want 1", result.CalendarsProcessed)
	}
	if result.EventsAdded != 1 {
		t.Fatalf("EventsAdded = %d, want 1", result.EventsAdded)
	}

	cals, err := db.ListCalendars()
	if err != nil {
		t.Fatalf("ListCalendars: %v", err)
	}
	if len(cals) != 1 || cals[0].Title != "Work" {
		t.Fatalf("expected only Work calendar mirrored, got %+v", cals)
	}
}

func TestSyncOrganizerAddedWhenMissing(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	provider := &fakeProvider{
		calendars: []CalendarSnapshot{{UpstreamID: "work", Title: "Work"}},
		events: map[string][]EventSnapshot{
			"work": {
				{
					UpstreamEventID: "e1", Summary: "Planning", StartUTC: now, EndUTC: now.Add(time.Hour),
					CreatedUTC: now, UpdatedUTC: now,
					Organizer: &AttendeeSnapshot{Name: "Alice", Email: "alice@example.com"},
					Attendees: []AttendeeSnapshot{{Name: "Bob", Email: "bob@example.com"}},
				},
			},
		},
	}

	engine := NewEngine(db, provider)
	if _, err := engine.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	cals, _ := db.ListCalendars()
	events, err := db.ListEventsInCalendar(cals[0].ID)
	if err != nil {
		t.Fatalf("ListEventsInCalendar: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	attendees, err := db.GetAttendees(events[0].ID)
	if err != nil {
		t.Fatalf("GetAttendees: %v", err)
	}
	if len(attendees) != 2 {
		t.Fatalf("expected organizer added alongside existing attendee, got %d: %+v", len(attendees), attendees)
	}
	foundOrganizer := false
	for _, a := range attendees {
		if a.IsOrganizer && a.Name == "Alice" {
			foundOrganizer = true
		}
	}
	if !foundOrganizer {
		t.Fatalf("expected Alice to be recorded as organizer, got %+v", attendees)
	}
}

func TestSyncDeletionSweepRemovesVanishedEvents(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	provider := &fakeProvider{
		calendars: []CalendarSnapshot{{UpstreamID: "work", Title: "Work"}},
		events: map[string][]EventSnapshot{
			"work": {
				{UpstreamEventID: "e1", Summary: "Keep", StartUTC: now, EndUTC: now.Add(time.Hour), CreatedUTC: now, UpdatedUTC: now},
				{UpstreamEventID: "e2", Summary: "Drop me", StartUTC: now, EndUTC: now.Add(time.Hour), CreatedUTC: now, UpdatedUTC: now},
			},
		},
	}
	engine := NewEngine(db, provider)
	if _, err := engine.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	provider.events["work"] = provider.events["work"][:1]
	result, err := engine.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if result.EventsDeleted != 1 {
		t.Fatalf("EventsDeleted = %d, want 1", result.EventsDeleted)
	}

	cals, _ := db.ListCalendars()
	events, err := db.ListEventsInCalendar(cals[0].ID)
	if err != nil {
		t.Fatalf("ListEventsInCalendar: %v", err)
	}
	if len(events) != 1 || events[0].Summary != "Keep" {
		t.Fatalf("expected only Keep to survive, got %+v", events)
	}
}

func TestSyncContinuesWhenReminderPermissionDenied(t *testing.T) {
	db := openTestDB(t)
	provider := &fakeProvider{
		calendars:    nil,
		events:       map[string][]EventSnapshot{},
		remindersErr: errors.New("reminders access denied"),
	}
	engine := NewEngine(db, provider)

	result, err := engine.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.RemindersSynced != 0 {
		t.Fatalf("expected no reminders processed when access is denied, got %d", result.RemindersSynced)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected the reminder failure recorded as one warning, got %v", result.Warnings)
	}

	state, err := db.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state != store.SyncSuccess {
		t.Fatalf("state = %v, want success even when reminders fail", state)
	}
}
