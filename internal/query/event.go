package query

import "strings"

// EventQuery is the parsed form of a calendar search string — same
// structure as MessageQuery per spec.md §4.D ("Same structure for the Event
// search surface").
type EventQuery struct {
	Calendar  string
	Attendee  string
	Location  string
	AfterUTC  *int64
	BeforeUTC *int64
	FreeText  string
}

// ParseEventQuery tokenizes s into calendar/attendee/location filters, an
// after/before/date range, and free text searched against
// summary/description/location.
func ParseEventQuery(s string) (EventQuery, error) {
	var q EventQuery
	var free []string

	for _, tok := range tokenize(s) {
		if tok.key == "" {
			free = append(free, tok.value)
			continue
		}

		switch tok.key {
		case "calendar":
			q.Calendar = tok.value
		case "attendee":
			q.Attendee = tok.value
		case "location":
			q.Location = tok.value
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
			free = append(free, tok.key+":"+tok.value)
		}
	}

	q.FreeText = strings.TrimSpace(strings.Join(free, " "))
	return q, nil
}
