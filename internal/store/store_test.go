package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestMailDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mail.db")
	db, err := Open(path, MailMigrations)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func openTestCalendarDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.db")
	db, err := Open(path, CalendarMigrations)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertMessageIdempotent(t *testing.T) {
	db := openTestMailDB(t)

	if err := db.UpsertMailbox(Mailbox{ID: "mb-1", Account: "acct", Name: "Inbox", Path: "INBOX", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertMailbox: %v", err)
	}

	m := MailMessage{
		ID: "msg-1", UpstreamRowID: "1", Subject: "Q1 budget review",
		SenderName: "Alice", SenderEmail: "alice@example.com",
		DateSentUTC: time.Now().UTC().Truncate(time.Second), MailboxID: "mb-1",
		BodyText: "please review the numbers", SyncedAt: time.Now(),
	}

	if err := db.UpsertMessage(m); err != nil {
		t.Fatalf("first UpsertMessage: %v", err)
	}
	if err := db.UpsertMessage(m); err != nil {
		t.Fatalf("second UpsertMessage: %v", err)
	}

	got, err := db.GetMessage("msg-1")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if got.Subject != m.Subject || got.BodyText != m.BodyText {
		t.Fatalf("row content changed across idempotent upserts: %+v", got)
	}
}

func TestMessagesFTSRowCountMatchesBaseTable(t *testing.T) {
	db := openTestMailDB(t)
	if err := db.UpsertMailbox(Mailbox{ID: "mb-1", Account: "acct", Name: "Inbox", Path: "INBOX", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertMailbox: %v", err)
	}

	subjects := []string{"Q1 budget review", "Q2 planning", "budget variance Q1"}
	for i, s := range subjects {
		m := MailMessage{
			ID: "msg-" + s, UpstreamRowID: string(rune('a' + i)), Subject: s,
			DateSentUTC: time.Now(), MailboxID: "mb-1", SyncedAt: time.Now(),
		}
		if err := db.UpsertMessage(m); err != nil {
			t.Fatalf("UpsertMessage(%d): %v", i, err)
		}
	}

	var baseCount, ftsCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&baseCount); err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages_fts`).Scan(&ftsCount); err != nil {
		t.Fatalf("count messages_fts: %v", err)
	}
	if baseCount != ftsCount {
		t.Fatalf("row count mismatch: messages=%d messages_fts=%d", baseCount, ftsCount)
	}
	if baseCount != 3 {
		t.Fatalf("expected 3 messages, got %d", baseCount)
	}
}

func TestSearchBySubjectMatchesAllFTSTerms(t *testing.T) {
	db := openTestMailDB(t)
	if err := db.UpsertMailbox(Mailbox{ID: "mb-1", Account: "acct", Name: "Inbox", Path: "INBOX", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertMailbox: %v", err)
	}

	rows := []struct{ id, subject string }{
		{"1", "Q1 budget review"},
		{"2", "Q2 planning"},
		{"3", "budget variance Q1"},
	}
	for _, r := range rows {
		m := MailMessage{ID: r.id, UpstreamRowID: r.id, Subject: r.subject, MailboxID: "mb-1", DateSentUTC: time.Now(), SyncedAt: time.Now()}
		if err := db.UpsertMessage(m); err != nil {
			t.Fatalf("UpsertMessage: %v", err)
		}
	}

	got, err := db.GetMessages(MessageFilter{FTSMatch: `"budget"* "Q1"*`}, 10)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestStructuredQueryNeverInvokesFTS(t *testing.T) {
	db := openTestMailDB(t)
	if err := db.UpsertMailbox(Mailbox{ID: "mb-1", Account: "acct", Name: "Inbox", Path: "INBOX", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertMailbox: %v", err)
	}
	flagged := true
	got, err := db.GetMessages(MessageFilter{IsFlagged: &flagged}, 10)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches on empty store, got %d", len(got))
	}
}

func TestGetMessagesFiltersByRecipient(t *testing.T) {
	db := openTestMailDB(t)
	if err := db.UpsertMailbox(Mailbox{ID: "mb-1", Account: "acct", Name: "Inbox", Path: "INBOX", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertMailbox: %v", err)
	}

	rows := []struct{ id, recipients string }{
		{"1", "bob@example.com"},
		{"2", "carol@example.com; bob@example.com"},
		{"3", "dave@example.com"},
	}
	for _, r := range rows {
		m := MailMessage{ID: r.id, UpstreamRowID: r.id, Subject: "s", Recipients: r.recipients, MailboxID: "mb-1", DateSentUTC: time.Now(), SyncedAt: time.Now()}
		if err := db.UpsertMessage(m); err != nil {
			t.Fatalf("UpsertMessage: %v", err)
		}
	}

	got, err := db.GetMessages(MessageFilter{RecipientLike: "bob@example.com"}, 10)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages to bob, got %d", len(got))
	}
}

func TestDeletionSweepIsCalendarLocal(t *testing.T) {
	db := openTestCalendarDB(t)
	if err := db.UpsertCalendar(Calendar{ID: "cal-work", UpstreamID: "work", Title: "Work", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertCalendar: %v", err)
	}
	if err := db.UpsertCalendar(Calendar{ID: "cal-home", UpstreamID: "home", Title: "Home", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertCalendar: %v", err)
	}

	start := time.Now().UTC()
	for _, id := range []string{"a", "b", "c"} {
		e := Event{ID: id, CalendarID: "cal-work", Summary: id, StartUTC: start, EndUTC: start.Add(time.Hour), SyncedAt: time.Now()}
		if err := db.UpsertEvent(e); err != nil {
			t.Fatalf("UpsertEvent: %v", err)
		}
	}
	homeEvent := Event{ID: "home-1", CalendarID: "cal-home", Summary: "keep me", StartUTC: start, EndUTC: start.Add(time.Hour), SyncedAt: time.Now()}
	if err := db.UpsertEvent(homeEvent); err != nil {
		t.Fatalf("UpsertEvent (home): %v", err)
	}

	deleted, err := db.DeleteEventsNotIn("cal-work", map[string]bool{"a": true, "c": true})
	if err != nil {
		t.Fatalf("DeleteEventsNotIn: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}

	if _, err := db.GetEvent("b"); !NotFound(err) {
		t.Fatalf("expected event b to be deleted, got err=%v", err)
	}
	if _, err := db.GetEvent("a"); err != nil {
		t.Fatalf("expected event a untouched: %v", err)
	}
	if _, err := db.GetEvent("home-1"); err != nil {
		t.Fatalf("expected home-1 untouched by work calendar sweep: %v", err)
	}
}

func TestReplaceAttendeesIsWholesale(t *testing.T) {
	db := openTestCalendarDB(t)
	if err := db.UpsertCalendar(Calendar{ID: "cal-1", SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertCalendar: %v", err)
	}
	start := time.Now().UTC()
	if err := db.UpsertEvent(Event{ID: "ev-1", CalendarID: "cal-1", StartUTC: start, EndUTC: start.Add(time.Hour), SyncedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertEvent: %v", err)
	}

	if err := db.ReplaceAttendees("ev-1", []Attendee{{EventID: "ev-1", Name: "Alice", IsOrganizer: true}, {EventID: "ev-1", Name: "Bob"}}); err != nil {
		t.Fatalf("ReplaceAttendees: %v", err)
	}
	got, err := db.GetAttendees("ev-1")
	if err != nil {
		t.Fatalf("GetAttendees: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 attendees, got %d", len(got))
	}

	if err := db.ReplaceAttendees("ev-1", []Attendee{{EventID: "ev-1", Name: "Carol"}}); err != nil {
		t.Fatalf("ReplaceAttendees (second): %v", err)
	}
	got, err = db.GetAttendees("ev-1")
	if err != nil {
		t.Fatalf("GetAttendees: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Carol" {
		t.Fatalf("expected replace-wholesale, got %+v", got)
	}
}

func TestSyncStatusSetGet(t *testing.T) {
	db := openTestCalendarDB(t)
	if err := db.SetState(SyncRunning); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	state, err := db.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state != SyncRunning {
		t.Fatalf("State = %v, want running", state)
	}
}
