package query

import "testing"

func TestParseMessageQueryBasic(t *testing.T) {
	q, err := ParseMessageQuery(`from:a is:unread hello`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.From != "a" {
		t.Errorf("From = %q, want %q", q.From, "a")
	}
	if q.IsRead == nil || *q.IsRead != false {
		t.Errorf("IsRead = %v, want false", q.IsRead)
	}
	if q.FreeText != "hello" {
		t.Errorf("FreeText = %q, want %q", q.FreeText, "hello")
	}
}

func TestParseMessageQueryQuotedValue(t *testing.T) {
	q, err := ParseMessageQuery(`from:"Alice Smith"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.From != "Alice Smith" {
		t.Fatalf("From = %q, want %q", q.From, "Alice Smith")
	}
}

func TestParseMessageQueryUnknownPrefixIsFreeText(t *testing.T) {
	q, err := ParseMessageQuery(`foo:bar hello`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.FreeText != "foo:bar hello" {
		t.Fatalf("FreeText = %q, want whole string treated as free text", q.FreeText)
	}
}

func TestParseMessageQueryEmpty(t *testing.T) {
	q, err := ParseMessageQuery("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.FreeText != "" || q.From != "" || q.IsRead != nil {
		t.Fatalf("expected zero-value query for empty input, got %+v", q)
	}
}

func TestParseMessageQueryDateShorthand(t *testing.T) {
	q, err := ParseMessageQuery("date:2026-02-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.AfterUTC == nil || q.BeforeUTC == nil {
		t.Fatal("expected both AfterUTC and BeforeUTC set")
	}
	if *q.BeforeUTC-*q.AfterUTC != 86400 {
		t.Fatalf("expected a one-day window, got %d seconds", *q.BeforeUTC-*q.AfterUTC)
	}
}

func TestParseMessageQueryRecipient(t *testing.T) {
	q, err := ParseMessageQuery(`to:bob@example.com hello`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.To != "bob@example.com" {
		t.Errorf("To = %q, want %q", q.To, "bob@example.com")
	}
	if q.FreeText != "hello" {
		t.Errorf("FreeText = %q, want %q", q.FreeText, "hello")
	}
}

func TestBuildFTSMatchEmpty(t *testing.T) {
	if got := BuildFTSMatch("   "); got != "" {
		t.Fatalf("expected empty FTS expression for blank free text, got %q", got)
	}
}
