package query

import "github.com/kestrelvault/mirror/internal/store"

// CompileMessageFilter turns a parsed MessageQuery into the typed filter the
// Mirror Store understands. mailboxResolver maps a mailbox-name equality
// filter to its stable public ID (case-insensitive); pass nil to skip
// mailbox-name resolution entirely (tests construct MessageFilter directly
// when exercising a known mailbox ID).
func CompileMessageFilter(q MessageQuery, mailboxResolver func(name string) (string, bool)) store.MessageFilter {
	f := store.MessageFilter{
		IsRead:        q.IsRead,
		IsFlagged:     q.IsFlagged,
		SenderLike:    q.From,
		SubjectLike:   q.Subject,
		RecipientLike: q.To,
		AfterUTC:      q.AfterUTC,
		BeforeUTC:     q.BeforeUTC,
		FTSMatch:      BuildFTSMatch(q.FreeText),
	}
	if q.HasAttachments {
		t := true
		f.HasAttachments = &t
	}
	if q.Mailbox != "" && mailboxResolver != nil {
		if id, ok := mailboxResolver(q.Mailbox); ok {
			f.MailboxID = id
		}
	}
	return f
}

// CompileEventFilter turns a parsed EventQuery into the typed filter the
// Mirror Store understands.
func CompileEventFilter(q EventQuery, calendarResolver func(name string) (string, bool)) store.EventFilter {
	f := store.EventFilter{
		LocationLike: q.Location,
		AttendeeLike: q.Attendee,
		AfterUTC:     q.AfterUTC,
		BeforeUTC:    q.BeforeUTC,
		FTSMatch:     BuildFTSMatch(q.FreeText),
	}
	if q.Calendar != "" && calendarResolver != nil {
		if id, ok := calendarResolver(q.Calendar); ok {
			f.CalendarID = id
		}
	}
	return f
}
