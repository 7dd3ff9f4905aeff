package calsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"github.com/kestrelvault/mirror/internal/identity"
	"github.com/kestrelvault/mirror/internal/logging"
	"github.com/kestrelvault/mirror/internal/retry"
	"github.com/kestrelvault/mirror/internal/store"
)

// DefaultDateRangeDays is how far past "now" the sync window extends
// (spec.md glossary: "Window"). The 30 days behind "now" is fixed by the
// spec; only the forward edge is configurable.
const DefaultDateRangeDays = 90

// Result carries the outcome of one sync pass (spec.md §4.F step 8).
type Result struct {
	CalendarsProcessed int
	EventsAdded        int
	EventsUpdated      int
	EventsDeleted      int
	RemindersSynced    int
	Duration           time.Duration
	Warnings           []string
}

// Engine drives the Calendar Sync Engine's algorithm against one Provider
// and one mirror database.
type Engine struct {
	DB            *store.DB
	Provider      Provider
	DateRangeDays int
	Daemon        bool
	RetryPolicy   retry.Policy

	log zerolog.Logger
}

// NewEngine builds an Engine with the default window and retry policy.
func NewEngine(db *store.DB, p Provider) *Engine {
	return &Engine{DB: db, Provider: p, DateRangeDays: DefaultDateRangeDays, RetryPolicy: retry.Default()}
}

// Sync runs one full calendar sync pass (spec.md §4.F). Unlike the Mail
// Sync Engine there is no incremental mode: the provider is always asked
// for the full window and reconciliation does the rest.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	e.log = logging.WithComponent("calsync")
	log := e.log
	start := time.Now()

	if err := e.DB.SetState(store.SyncRunning); err != nil {
		return Result{}, err
	}
	if err := e.DB.SetSyncStatusInt("last_sync_start", start.UTC().Unix()); err != nil {
		return Result{}, err
	}

	access, err := e.Provider.RequestAccess(ctx)
	if err != nil || !access.Granted {
		e.fail(fmt.Sprintf("permission denied: %v", access.Error))
		return Result{}, &PermissionError{Cause: access.Error}
	}

	window := e.resolveWindow(start)
	if err := e.persistWindow(window); err != nil {
		return Result{}, err
	}

	calendars, err := e.Provider.ListCalendars(ctx)
	if err != nil {
		e.fail(err.Error())
		return Result{}, err
	}

	var result Result
	for _, cal := range calendars {
		if skipCalendar(cal) {
			continue
		}
		if err := e.syncCalendar(ctx, cal, window, &result); err != nil {
			e.fail(err.Error())
			return result, err
		}
		result.CalendarsProcessed++
	}

	e.syncReminders(ctx, window, &result)

	result.Duration = time.Since(start)
	if err := e.DB.SetState(store.SyncSuccess); err != nil {
		return result, err
	}
	if err := e.DB.RecordSyncTime(time.Now()); err != nil {
		return result, err
	}
	_ = e.DB.SetSyncStatusInt(store.KeyEventsAdded, int64(result.EventsAdded))
	_ = e.DB.SetSyncStatusInt(store.KeyEventsUpdated, int64(result.EventsUpdated))
	_ = e.DB.SetSyncStatusInt(store.KeyEventsDeleted, int64(result.EventsDeleted))
	_ = e.DB.SetSyncStatusInt(store.KeySyncDuration, int64(result.Duration.Seconds()))
	_ = e.DB.SetSyncStatus(store.KeyLastSyncError, "")

	log.Info().Int("calendars", result.CalendarsProcessed).
		Int("events_added", result.EventsAdded).Int("events_updated", result.EventsUpdated).
		Int("events_deleted", result.EventsDeleted).Int("reminders", result.RemindersSynced).
		Dur("duration", result.Duration).Int("warnings", len(result.Warnings)).
		Msg("calendar sync complete")

	return result, nil
}

func (e *Engine) resolveWindow(now time.Time) Window {
	days := e.DateRangeDays
	if days <= 0 {
		days = DefaultDateRangeDays
	}
	return Window{
		StartUTC: now.UTC().AddDate(0, 0, -30),
		EndUTC:   now.UTC().AddDate(0, 0, days),
	}
}

func (e *Engine) persistWindow(w Window) error {
	if err := e.DB.SetSyncStatusInt(store.KeyDateRangeStart, w.StartUTC.Unix()); err != nil {
		return err
	}
	return e.DB.SetSyncStatusInt(store.KeyDateRangeEnd, w.EndUTC.Unix())
}

// skipCalendar implements spec.md §4.F step 3: calendars with no upstream
// identifier, or whose title resembles "Siri suggestions", are known to
// crash enumeration and are dropped before any upsert.
func skipCalendar(cal CalendarSnapshot) bool {
	if strings.TrimSpace(cal.UpstreamID) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(cal.Title), "siri suggestion")
}

func (e *Engine) syncCalendar(ctx context.Context, cal CalendarSnapshot, window Window, result *Result) error {
	calendarID := identity.NormalizeExternalID(cal.UpstreamID)

	if err := e.withRetry(ctx, func() error {
		return e.DB.UpsertCalendar(store.Calendar{
			ID: calendarID, UpstreamID: cal.UpstreamID, Title: cal.Title, SourceType: cal.SourceType,
			Color: cal.Color, IsSubscribed: cal.IsSubscribed, IsImmutable: cal.IsImmutable, SyncedAt: time.Now(),
		})
	}); err != nil {
		return err
	}

	events, err := e.Provider.ListEvents(ctx, cal.UpstreamID, window)
	if err != nil {
		return err
	}

	existingRows, err := e.DB.ListEventsInCalendar(calendarID)
	if err != nil {
		return err
	}
	idx := newEventIndex(existingRows)

	seen := make(map[string]bool, len(events))
	for _, snap := range events {
		id, err := e.upsertEvent(ctx, calendarID, snap, idx, result)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", snap.UpstreamEventID, err))
			continue
		}
		seen[id] = true
	}

	deleted, err := e.DB.DeleteEventsNotIn(calendarID, seen)
	if err != nil {
		return err
	}
	result.EventsDeleted += deleted

	return nil
}

func (e *Engine) upsertEvent(ctx context.Context, calendarID string, snap EventSnapshot, idx eventIndex, result *Result) (string, error) {
	if snap.RecurrenceRule != "" && snap.MasterUpstreamID == "" {
		if _, err := rrule.StrToRRule(snap.RecurrenceRule); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: invalid recurrence rule %q: %v", snap.UpstreamEventID, snap.RecurrenceRule, err))
		}
	}

	current := identity.Triple{LocalID: snap.UpstreamEventID, ExternalID: snap.ExternalID, CalendarID: calendarID}

	// Reconcile against what's already stored before ever computing a fresh
	// public ID: spec.md §4.B rule 3 says the public ID is never rewritten
	// once chosen, so an event whose external_id (or local id) drifted must
	// still resolve to its existing row, not a new one.
	var eid string
	existing := idx.byIdentifier(current.LocalID, current.ExternalID)
	if existing != nil {
		stored := identity.Triple{LocalID: existing.UpstreamEventID, ExternalID: existing.ExternalID, CalendarID: existing.CalendarID}
		if class := identity.Reconcile(&stored, &current); class != identity.Match {
			e.log.Debug().Str("public_id", existing.ID).Str("classification", string(class)).
				Msg("event identifier drifted, keeping existing public id")
		}
		eid = existing.ID
	} else if match := idx.byContent(snap.Summary, snap.StartUTC); match != nil {
		// No identifier agreement at all: guard against the upstream
		// swapping every identifier at once (spec.md §4.B rule 4, e.g. a
		// first sync against a different backing store).
		e.log.Debug().Str("public_id", match.ID).Msg("event matched by content fallback, keeping existing public id")
		existing = match
		eid = match.ID
	} else {
		eid = identity.PublicEventID(identity.EventIdentity{
			Triple:        current,
			Summary:       snap.Summary,
			StartUTC:      snap.StartUTC,
			OccurrenceUTC: snap.OccurrenceUTC,
		})
	}

	var masterID string
	if snap.MasterUpstreamID != "" {
		masterID = identity.PublicEventID(identity.EventIdentity{
			Triple:   identity.Triple{LocalID: snap.MasterUpstreamID, CalendarID: calendarID},
			Summary:  snap.Summary,
			StartUTC: snap.StartUTC,
		})
	}

	existed := existing != nil

	ev := store.Event{
		ID: eid, UpstreamEventID: snap.UpstreamEventID, ExternalID: snap.ExternalID, CalendarID: calendarID,
		Summary: snap.Summary, Description: snap.Description, Location: snap.Location, URL: snap.URL,
		StartUTC: snap.StartUTC, EndUTC: snap.EndUTC, StartTZ: snap.StartTZ, EndTZ: snap.EndTZ,
		IsAllDay: snap.IsAllDay, RecurrenceRule: snap.RecurrenceRule, MasterEventID: masterID,
		OccurrenceDateUTC: snap.OccurrenceUTC, Status: snap.Status,
		CreatedUTC: snap.CreatedUTC, UpdatedUTC: snap.UpdatedUTC, SyncedAt: time.Now(),
	}
	if existing != nil && ev.CreatedUTC.IsZero() {
		ev.CreatedUTC = existing.CreatedUTC
	}
	if ev.CreatedUTC.IsZero() {
		ev.CreatedUTC = time.Now()
	}

	if err := e.withRetry(ctx, func() error { return e.DB.UpsertEvent(ev) }); err != nil {
		return "", err
	}

	attendees := buildAttendees(eid, snap.Organizer, snap.Attendees)
	if err := e.withRetry(ctx, func() error { return e.DB.ReplaceAttendees(eid, attendees) }); err != nil {
		return "", err
	}

	if existed {
		result.EventsUpdated++
	} else {
		result.EventsAdded++
	}
	return eid, nil
}

// buildAttendees converts provider attendee snapshots, adding the organizer
// as an attendee when the provider did not already list them as one
// (spec.md §4.F step 5).
func buildAttendees(eventID string, organizer *AttendeeSnapshot, snaps []AttendeeSnapshot) []store.Attendee {
	out := make([]store.Attendee, 0, len(snaps)+1)
	haveOrganizer := false
	for _, s := range snaps {
		if s.IsOrganizer {
			haveOrganizer = true
		}
		out = append(out, store.Attendee{
			EventID: eventID, Name: s.Name, Email: s.Email,
			ResponseStatus: s.ResponseStatus, IsOrganizer: s.IsOrganizer, IsOptional: s.IsOptional,
		})
	}
	if organizer != nil && !haveOrganizer {
		out = append(out, store.Attendee{
			EventID: eventID, Name: organizer.Name, Email: organizer.Email,
			ResponseStatus: organizer.ResponseStatus, IsOrganizer: true,
		})
	}
	return out
}

// eventIndex indexes one calendar's existing rows by stored identifier (and
// keeps the full set for the content-match fallback) so upsertEvent can
// reconcile a snapshot's current identity triple against what's already on
// disk without a query per event.
type eventIndex struct {
	byLocalID    map[string]*store.Event
	byExternalID map[string]*store.Event
	all          []store.Event
}

func newEventIndex(rows []store.Event) eventIndex {
	idx := eventIndex{
		byLocalID:    make(map[string]*store.Event, len(rows)),
		byExternalID: make(map[string]*store.Event, len(rows)),
		all:          rows,
	}
	for i := range rows {
		row := &rows[i]
		if row.UpstreamEventID != "" {
			idx.byLocalID[row.UpstreamEventID] = row
		}
		if row.ExternalID != "" {
			idx.byExternalID[identity.NormalizeExternalID(row.ExternalID)] = row
		}
	}
	return idx
}

func (idx eventIndex) byIdentifier(localID, externalID string) *store.Event {
	if localID != "" {
		if row, ok := idx.byLocalID[localID]; ok {
			return row
		}
	}
	if externalID != "" {
		if row, ok := idx.byExternalID[identity.NormalizeExternalID(externalID)]; ok {
			return row
		}
	}
	return nil
}

func (idx eventIndex) byContent(summary string, start time.Time) *store.Event {
	for i := range idx.all {
		row := &idx.all[i]
		if identity.ContentMatch(row.Summary, row.StartUTC, summary, start, identity.ContentMatchTolerance) {
			return row
		}
	}
	return nil
}

// syncReminders is best-effort: a failure here is recorded as a warning and
// never fails the overall sync (spec.md §4.F step 7).
func (e *Engine) syncReminders(ctx context.Context, window Window, result *Result) {
	reminders, err := e.Provider.ListReminders(ctx, window)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("reminders: %v", err))
		return
	}
	for _, snap := range reminders {
		calendarID := identity.NormalizeExternalID(snap.CalendarUpstreamID)
		id := publicReminderID(calendarID, snap.UpstreamID)
		r := store.Reminder{
			ID: id, UpstreamID: snap.UpstreamID, CalendarID: calendarID, Title: snap.Title, Notes: snap.Notes,
			DueUTC: snap.DueUTC, Priority: snap.Priority, IsCompleted: snap.IsCompleted,
			CompletedUTC: snap.CompletedUTC, SyncedAt: time.Now(),
		}
		if err := e.DB.UpsertReminder(r); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("reminder %s: %v", snap.UpstreamID, err))
			continue
		}
		result.RemindersSynced++
	}
}

func (e *Engine) withRetry(ctx context.Context, op func() error) error {
	if !e.Daemon {
		return op()
	}
	_, err := retry.Do(ctx, e.RetryPolicy, nil, func(int) error { return op() })
	return err
}

func (e *Engine) fail(msg string) {
	_ = e.DB.SetState(store.SyncFailed)
	_ = e.DB.SetSyncStatus(store.KeyLastSyncError, msg)
}

// PermissionError wraps a Source Provider access denial (spec.md §7).
type PermissionError struct {
	Cause error
}

func (e *PermissionError) Error() string {
	if e.Cause != nil {
		return "permission denied: " + e.Cause.Error()
	}
	return "permission denied"
}

func (e *PermissionError) Unwrap() error { return e.Cause }
