package export

import (
	"encoding/json"

	"github.com/kestrelvault/mirror/internal/store"
)

// Envelope is the versioned wrapper spec.md §4.H requires around every JSON
// export, whether it's a single item or a full query result set.
type Envelope struct {
	Version string `json:"version"`
	Query   string `json:"query,omitempty"`
	Total   int    `json:"total"`
	Items   []any  `json:"items"`
}

func NewEnvelope(query string, items []any) Envelope {
	return Envelope{Version: "1.0", Query: query, Total: len(items), Items: items}
}

// MarshalEnvelope is a thin wrapper kept so callers never reach past this
// package for the json tag conventions the envelope commits to.
func MarshalEnvelope(e Envelope) ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

type mailMessageJSON struct {
	ID             string `json:"id"`
	Subject        string `json:"subject"`
	FromName       string `json:"from_name,omitempty"`
	FromEmail      string `json:"from_email"`
	To             string `json:"to,omitempty"`
	DateSent       string `json:"date_sent"`
	MailboxID      string `json:"mailbox_id"`
	IsRead         bool   `json:"is_read"`
	IsFlagged      bool   `json:"is_flagged"`
	HasAttachments bool   `json:"has_attachments"`
	BodyText       string `json:"body_text,omitempty"`
}

// MailMessageJSON projects a mail message onto the exported JSON shape.
func MailMessageJSON(m store.MailMessage) any {
	return mailMessageJSON{
		ID:             m.ID,
		Subject:        m.Subject,
		FromName:       m.SenderName,
		FromEmail:      m.SenderEmail,
		To:             m.Recipients,
		DateSent:       m.DateSentUTC.UTC().Format(isoDate),
		MailboxID:      m.MailboxID,
		IsRead:         m.IsRead,
		IsFlagged:      m.IsFlagged,
		HasAttachments: m.HasAttachments,
		BodyText:       m.BodyText,
	}
}

type attendeeJSON struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email"`
	IsOrganizer bool   `json:"is_organizer,omitempty"`
}

type eventJSON struct {
	ID         string         `json:"id"`
	Summary    string         `json:"summary"`
	Location   string         `json:"location,omitempty"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	IsAllDay   bool           `json:"is_all_day"`
	CalendarID string         `json:"calendar_id"`
	Attendees  []attendeeJSON `json:"attendees,omitempty"`
}

// EventJSON projects a calendar event onto the exported JSON shape. Dates
// collapse to YYYY-MM-DD for all-day events per spec.md §4.H, full ISO-8601
// UTC timestamps otherwise.
func EventJSON(e store.Event, attendees []store.Attendee) any {
	out := make([]attendeeJSON, len(attendees))
	for i, a := range attendees {
		out[i] = attendeeJSON{Name: a.Name, Email: a.Email, IsOrganizer: a.IsOrganizer}
	}

	return eventJSON{
		ID:         e.ID,
		Summary:    e.Summary,
		Location:   e.Location,
		Start:      formatEventTime(e.StartUTC, e.IsAllDay),
		End:        formatEventTime(e.EndUTC, e.IsAllDay),
		IsAllDay:   e.IsAllDay,
		CalendarID: e.CalendarID,
		Attendees:  out,
	}
}
