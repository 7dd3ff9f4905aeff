package mailsync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kestrelvault/mirror/internal/store"
)

type fakeProvider struct {
	mailboxes []MailboxSnapshot
	messages  map[string][]MailSnapshot
}

func (p *fakeProvider) RequestAccess(ctx context.Context) (AccessResult, error) {
	return AccessResult{Granted: true}, nil
}

func (p *fakeProvider) ListMailboxes(ctx context.Context) ([]MailboxSnapshot, error) {
	return p.mailboxes, nil
}

func (p *fakeProvider) IterMessages(ctx context.Context, mailboxID string, since *time.Time, yield func(MailSnapshot) error) error {
	for _, m := range p.messages[mailboxID] {
		if err := yield(m); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakeProvider) ReadMessageBody(ctx context.Context, path string) (MessageBody, error) {
	return MessageBody{Text: "body of " + path}, nil
}

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "mail.db"), store.MailMigrations)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFreshSyncScenario(t *testing.T) {
	db := openTestDB(t)

	provider := &fakeProvider{
		mailboxes: []MailboxSnapshot{
			{UpstreamID: "mb-inbox", Account: "acct", Name: "Inbox", Path: "INBOX", MessageCount: 10},
			{UpstreamID: "mb-sent", Account: "acct", Name: "Sent", Path: "Sent", MessageCount: 5},
			{UpstreamID: "mb-trash", Account: "acct", Name: "Trash", Path: "Trash", MessageCount: 0},
		},
		messages: map[string][]MailSnapshot{},
	}
	for i := 0; i < 10; i++ {
		provider.messages["mb-inbox"] = append(provider.messages["mb-inbox"], MailSnapshot{
			UpstreamRowID: itoa(i), MessageIDHeader: "inbox-" + itoa(i) + "@example.com", DateSentUTC: time.Now(),
		})
	}
	for i := 0; i < 5; i++ {
		provider.messages["mb-sent"] = append(provider.messages["mb-sent"], MailSnapshot{
			UpstreamRowID: itoa(i), MessageIDHeader: "sent-" + itoa(i) + "@example.com", DateSentUTC: time.Now(),
		})
	}

	engine := NewEngine(db, provider)
	result, err := engine.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if result.Added != 15 {
		t.Fatalf("Added = %d, want 15", result.Added)
	}
	if result.MailboxesProcessed != 3 {
		t.Fatalf("MailboxesProcessed = %d, want 3", result.MailboxesProcessed)
	}

	state, err := db.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state != store.SyncSuccess {
		t.Fatalf("state = %v, want success", state)
	}

	var ftsCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages_fts`).Scan(&ftsCount); err != nil {
		t.Fatalf("count: %v", err)
	}
	if ftsCount != 15 {
		t.Fatalf("messages_fts count = %d, want 15", ftsCount)
	}
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var out []byte
	for i > 0 {
		out = append([]byte{digits[i%10]}, out...)
		i /= 10
	}
	return string(out)
}
