package store

import "time"

// Mailbox mirrors an upstream mail folder. Created on first sync sighting;
// removed when the Source Provider stops enumerating it.
type Mailbox struct {
	ID           string
	Account      string
	Name         string
	Path         string
	MessageCount int
	SyncedAt     time.Time
}

// MailMessage mirrors one upstream mail message. ID is the stable public ID
// and survives upstream store rebuilds (see mailsync.PublicMessageID). A
// SourceFilePath beginning with "ews:" names a remote/virtual record whose
// raw body is unavailable.
type MailMessage struct {
	ID              string
	UpstreamRowID   string
	MessageIDHeader string
	Subject         string
	SenderName      string
	SenderEmail     string
	Recipients      string // semicolon-joined "Name <email>" or bare addresses, as supplied by the source provider
	DateSentUTC     time.Time
	MailboxID       string
	IsRead          bool
	IsFlagged       bool
	HasAttachments  bool
	BodyText        string
	BodyHTML        string
	SourceFilePath  string
	ExportPath      string
	SyncedAt        time.Time
}

// Calendar mirrors an upstream calendar.
type Calendar struct {
	ID           string
	UpstreamID   string
	Title        string
	SourceType   string
	Color        string
	IsSubscribed bool
	IsImmutable  bool
	SyncedAt     time.Time
}

// Event mirrors one occurrence of an upstream calendar event. For recurring
// series, each occurrence is a distinct row; OccurrenceDateUTC disambiguates
// instances sharing the same MasterEventID.
type Event struct {
	ID                string
	UpstreamEventID   string
	ExternalID        string
	CalendarID        string
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
	MasterEventID     string // empty for the master itself
	OccurrenceDateUTC *time.Time
	Status            string
	CreatedUTC        time.Time
	UpdatedUTC        time.Time
	SyncedAt          time.Time
}

// Attendee is owned by Event and replaced wholesale on every event upsert
// since upstream gives no stable per-attendee key.
type Attendee struct {
	RowID          int64
	EventID        string
	Name           string
	Email          string
	ResponseStatus string
	IsOrganizer    bool
	IsOptional     bool
}

// Reminder mirrors an upstream reminder/task.
type Reminder struct {
	ID           string
	UpstreamID   string
	CalendarID   string
	Title        string
	Notes        string
	DueUTC       *time.Time
	Priority     int
	IsCompleted  bool
	CompletedUTC *time.Time
	SyncedAt     time.Time
}

// SyncState is the well-known state machine for sync_status's "state" key
// (spec.md §3). Transitions only through idle -> running -> {success|failed}
// -> idle, the return to idle implicit at next sync start.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncRunning SyncState = "running"
	SyncSuccess SyncState = "success"
	SyncFailed  SyncState = "failed"
)
