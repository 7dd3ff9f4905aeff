package query

import "testing"

func TestCompileMessageFilterWiresRecipient(t *testing.T) {
	q := MessageQuery{To: "bob@example.com"}
	f := CompileMessageFilter(q, nil)
	if f.RecipientLike != "bob@example.com" {
		t.Fatalf("RecipientLike = %q, want %q", f.RecipientLike, "bob@example.com")
	}
}

func TestCompileMessageFilterResolvesMailbox(t *testing.T) {
	q := MessageQuery{Mailbox: "inbox"}
	resolver := func(name string) (string, bool) {
		if name == "inbox" {
			return "mb-1", true
		}
		return "", false
	}
	f := CompileMessageFilter(q, resolver)
	if f.MailboxID != "mb-1" {
		t.Fatalf("MailboxID = %q, want %q", f.MailboxID, "mb-1")
	}
}
