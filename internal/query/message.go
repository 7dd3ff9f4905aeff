package query

import (
	"strings"
	"time"
)

// MessageQuery is the parsed form of a mail search string (spec.md §4.D).
type MessageQuery struct {
	From           string
	To             string
	Subject        string
	Mailbox        string
	IsRead         *bool
	IsFlagged      *bool
	HasAttachments bool
	AfterUTC       *int64 // inclusive, seconds since epoch UTC
	BeforeUTC      *int64 // exclusive
	FreeText       string
}

// ParseMessageQuery tokenizes s into recognized field filters plus free
// text. Unrecognized prefixes fall through into the free-text portion
// (spec.md §4.D). An empty or whitespace-only query yields a zero
// MessageQuery with empty FreeText, signalling "most recent N" to the
// store layer rather than an FTS call.
func ParseMessageQuery(s string) (MessageQuery, error) {
	var q MessageQuery
	var free []string

	for _, tok := range tokenize(s) {
		if tok.key == "" {
			free = append(free, tok.value)
			continue
		}

		switch tok.key {
		case "from":
			q.From = tok.value
		case "to":
			q.To = tok.value
		case "subject":
			q.Subject = tok.value
		case "mailbox":
			q.Mailbox = tok.value
		case "is":
			switch strings.ToLower(tok.value) {
			case "read":
				b := true
				q.IsRead = &b
			case "unread":
				b := false
				q.IsRead = &b
			case "flagged":
				b := true
				q.IsFlagged = &b
			case "unflagged":
				b := false
				q.IsFlagged = &b
			default:
				free = append(free, tok.key+":"+tok.value)
			}
		case "has":
			if strings.ToLower(tok.value) == "attachments" {
				q.HasAttachments = true
			} else {
				free = append(free, tok.key+":"+tok.value)
			}
		case "after":
			t, err := parseDate(tok.value)
			if err != nil {
				free = append(free, tok.key+":"+tok.value)
				continue
			}
			u := t.Unix()
			q.AfterUTC = &u
		case "before":
			t, err := parseDate(tok.value)
			if err != nil {
				free = append(free, tok.key+":"+tok.value)
				continue
			}
			u := t.Unix()
			q.BeforeUTC = &u
		case "date":
			t, err := parseDate(tok.value)
			if err != nil {
				free = append(free, tok.key+":"+tok.value)
				continue
			}
			start := t.Unix()
			end := t.AddDate(0, 0, 1).Unix()
			q.AfterUTC = &start
			q.BeforeUTC = &end
		default:
			// Unrecognized prefix: treat the whole original token as free
			// text (spec.md boundary behavior: "foo:bar hello" is all free
			// text).
			free = append(free, tok.key+":"+tok.value)
		}
	}

	q.FreeText = strings.TrimSpace(strings.Join(free, " "))
	return q, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
