package export

import (
	"strings"
	"testing"
	"time"

	"github.com/kestrelvault/mirror/internal/store"
)

func TestStripHTMLRemovesScriptAndStyleContent(t *testing.T) {
	in := `<style>.a{color:red}</style><p>Hello<script>alert(1)</script> world</p>`
	got := stripHTML(in)
	if strings.Contains(got, "alert") || strings.Contains(got, "color:red") {
		t.Fatalf("expected script/style content stripped, got %q", got)
	}
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "world") {
		t.Fatalf("expected visible text preserved, got %q", got)
	}
}

func TestStripHTMLCollapsesExcessNewlines(t *testing.T) {
	in := "<p>one</p><br><br><br><p>two</p>"
	got := stripHTML(in)
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("expected runs of 3+ newlines collapsed, got %q", got)
	}
}

func TestMailMessageMarkdownPrefersPlainTextBody(t *testing.T) {
	m := store.MailMessage{
		ID:          "msg-abc123",
		Subject:     "Hi there",
		SenderName:  "Alice",
		SenderEmail: "alice@example.com",
		DateSentUTC: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		BodyText:    "plain body",
		BodyHTML:    "<p>html body</p>",
	}

	out := string(MailMessageMarkdown(m))
	if !strings.HasPrefix(out, "---\n") {
		t.Fatalf("expected YAML frontmatter delimiter, got %q", out[:20])
	}
	if !strings.Contains(out, "id: msg-abc123") {
		t.Fatalf("expected id in frontmatter, got %q", out)
	}
	if !strings.Contains(out, "plain body") {
		t.Fatalf("expected plain text body to win over HTML, got %q", out)
	}
	if strings.Contains(out, "html body") {
		t.Fatalf("did not expect HTML body when plain text is present, got %q", out)
	}
}

func TestMailMessageMarkdownFallsBackToStrippedHTML(t *testing.T) {
	m := store.MailMessage{
		ID:          "msg-def456",
		Subject:     "Only HTML",
		SenderEmail: "bob@example.com",
		DateSentUTC: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		BodyHTML:    "<p>only html here</p>",
	}

	out := string(MailMessageMarkdown(m))
	if !strings.Contains(out, "only html here") {
		t.Fatalf("expected stripped HTML body, got %q", out)
	}
	if strings.Contains(out, "<p>") {
		t.Fatalf("expected tags stripped, got %q", out)
	}
}

func TestEventMarkdownIncludesAttendeesAndLocation(t *testing.T) {
	e := store.Event{
		ID:       "evt-xyz",
		Summary:  "Planning",
		Location: "Room 4",
		StartUTC: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	attendees := []store.Attendee{
		{Name: "Carol", Email: "carol@example.com", IsOrganizer: true},
		{Email: "dave@example.com"},
	}

	out := string(EventMarkdown(e, attendees))
	if !strings.Contains(out, "Carol") || !strings.Contains(out, "dave@example.com") {
		t.Fatalf("expected both attendees represented, got %q", out)
	}
	if !strings.Contains(out, "Room 4") {
		t.Fatalf("expected location appended to body, got %q", out)
	}
}

func TestEventMarkdownAllDayUsesDateOnly(t *testing.T) {
	e := store.Event{
		ID:       "evt-allday",
		Summary:  "Holiday",
		StartUTC: time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC),
		IsAllDay: true,
	}

	out := string(EventMarkdown(e, nil))
	if !strings.Contains(out, "2026-12-25") {
		t.Fatalf("expected date-only start, got %q", out)
	}
	if strings.Contains(out, "T00:00:00Z") {
		t.Fatalf("expected no time-of-day for all-day event, got %q", out)
	}
}

func TestMailMessageFilenameIsPublicIDWithExtension(t *testing.T) {
	m := store.MailMessage{ID: "msg-1"}
	if got, want := MailMessageFilename(m), "msg-1.md"; got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}
}

func TestEventJSONAllDayCollapsesToDateOnly(t *testing.T) {
	e := store.Event{
		ID:       "evt-json",
		Summary:  "Offsite",
		StartUTC: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
		IsAllDay: true,
	}

	projected := EventJSON(e, nil)
	b, err := MarshalEnvelope(NewEnvelope("", []any{projected}))
	if err != nil {
		t.Fatalf("MarshalEnvelope: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"2026-06-01"`) {
		t.Fatalf("expected date-only start in JSON, got %s", s)
	}
	if !strings.Contains(s, `"version": "1.0"`) {
		t.Fatalf("expected version field, got %s", s)
	}
	if !strings.Contains(s, `"total": 1`) {
		t.Fatalf("expected total count, got %s", s)
	}
}

func TestEncodeEventsICalendarSetsOrganizerOnce(t *testing.T) {
	e := store.Event{
		ID:       "evt-ical",
		Summary:  "Sync",
		StartUTC: time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
	}
	attendees := map[string][]store.Attendee{
		"evt-ical": {
			{Name: "Eve", Email: "eve@example.com", IsOrganizer: true},
			{Name: "Frank", Email: "frank@example.com"},
		},
	}

	out, err := EncodeEventsICalendar([]store.Event{e}, attendees)
	if err != nil {
		t.Fatalf("EncodeEventsICalendar: %v", err)
	}
	s := string(out)

	if strings.Count(s, "ORGANIZER") != 1 {
		t.Fatalf("expected exactly one ORGANIZER line, got:\n%s", s)
	}
	if strings.Count(s, "ATTENDEE") != 1 {
		t.Fatalf("expected exactly one ATTENDEE line (organizer excluded), got:\n%s", s)
	}
	if !strings.Contains(s, "BEGIN:VCALENDAR") || !strings.Contains(s, "BEGIN:VEVENT") {
		t.Fatalf("expected VCALENDAR/VEVENT structure, got:\n%s", s)
	}
}

func TestEncodeEventsICalendarAllDayUsesDateValue(t *testing.T) {
	e := store.Event{
		ID:       "evt-allday-ical",
		Summary:  "Day off",
		StartUTC: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC),
		IsAllDay: true,
	}

	out, err := EncodeEventsICalendar([]store.Event{e}, nil)
	if err != nil {
		t.Fatalf("EncodeEventsICalendar: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "VALUE=DATE") {
		t.Fatalf("expected VALUE=DATE parameter for all-day event, got:\n%s", s)
	}
	if !strings.Contains(s, "20260704") {
		t.Fatalf("expected compact date value, got:\n%s", s)
	}
}
