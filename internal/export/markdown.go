package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kestrelvault/mirror/internal/store"
)

const isoDate = "2006-01-02T15:04:05Z"

type mailFrontmatter struct {
	ID      string   `yaml:"id"`
	Type    string   `yaml:"type"`
	Subject string   `yaml:"subject"`
	From    string   `yaml:"from"`
	To      string   `yaml:"to,omitempty"`
	Date    string   `yaml:"date"`
	Aliases []string `yaml:"aliases"`
}

type eventFrontmatter struct {
	ID        string   `yaml:"id"`
	Type      string   `yaml:"type"`
	Title     string   `yaml:"title"`
	Attendees []string `yaml:"attendees,omitempty"`
	Start     string   `yaml:"start"`
	End       string   `yaml:"end"`
	Aliases   []string `yaml:"aliases"`
}

// MailMessageFilename and EventFilename implement spec.md §4.H's flat,
// idempotent-on-re-export naming rule: one file per public ID.
func MailMessageFilename(m store.MailMessage) string { return m.ID + ".md" }
func EventFilename(e store.Event) string             { return e.ID + ".md" }

// MailMessageMarkdown renders a mail message as YAML-frontmatter Markdown
// (spec.md §4.H). The body prefers plain text; HTML-only bodies are stripped
// through stripHTML rather than emitted raw.
func MailMessageMarkdown(m store.MailMessage) []byte {
	from := m.SenderEmail
	if m.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", m.SenderName, m.SenderEmail)
	}

	fm := mailFrontmatter{
		ID:      m.ID,
		Type:    "mail",
		Subject: m.Subject,
		From:    from,
		To:      m.Recipients,
		Date:    m.DateSentUTC.UTC().Format(isoDate),
		Aliases: []string{m.MessageIDHeader},
	}

	body := m.BodyText
	if strings.TrimSpace(body) == "" && m.BodyHTML != "" {
		body = stripHTML(m.BodyHTML)
	}

	return renderFrontmatterDoc(fm, body)
}

// EventMarkdown renders a calendar event as YAML-frontmatter Markdown.
func EventMarkdown(e store.Event, attendees []store.Attendee) []byte {
	names := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if a.Name != "" {
			names = append(names, a.Name)
		} else {
			names = append(names, a.Email)
		}
	}

	fm := eventFrontmatter{
		ID:        e.ID,
		Type:      "event",
		Title:     e.Summary,
		Attendees: names,
		Start:     formatEventTime(e.StartUTC, e.IsAllDay),
		End:       formatEventTime(e.EndUTC, e.IsAllDay),
		Aliases:   []string{e.ExternalID},
	}

	body := e.Description
	if e.Location != "" {
		body = strings.TrimSpace(body + "\n\nLocation: " + e.Location)
	}

	return renderFrontmatterDoc(fm, body)
}

func formatEventTime(t time.Time, allDay bool) string {
	if allDay {
		return t.UTC().Format("2006-01-02")
	}
	return t.UTC().Format(isoDate)
}

func renderFrontmatterDoc(fm any, body string) []byte {
	var buf strings.Builder
	enc, err := yaml.Marshal(fm)
	if err != nil {
		enc = []byte("# frontmatter encoding failed\n")
	}
	buf.WriteString("---\n")
	buf.Write(enc)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(body))
	buf.WriteString("\n")
	return []byte(buf.String())
}
