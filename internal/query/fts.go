package query

import (
	"html"
	"strings"
)

// BuildFTSMatch turns free text into an FTS5 MATCH expression: words are
// split, internal quotes are escaped, and each word gets a prefix-match
// star so partial typing still finds results. Terms compose with FTS5's
// default implicit AND. Returns "" for empty input, signalling "no FTS
// call" per spec.md's boundary behavior.
func BuildFTSMatch(freeText string) string {
	freeText = strings.TrimSpace(freeText)
	if freeText == "" {
		return ""
	}

	words := strings.Fields(freeText)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		escaped := strings.ReplaceAll(w, `"`, `""`)
		quoted = append(quoted, `"`+escaped+`"*`)
	}
	return strings.Join(quoted, " ")
}

// Highlight wraps every case-insensitive occurrence of any term in terms
// with <mark></mark>, HTML-escaping the rest of text first so the markup
// cannot be spoofed by message content.
func Highlight(text string, terms []string) string {
	escaped := html.EscapeString(text)
	if len(terms) == 0 {
		return escaped
	}

	lowerEscaped := strings.ToLower(escaped)
	var out strings.Builder
	i := 0
	for i < len(escaped) {
		matched := false
		for _, term := range terms {
			term = strings.ToLower(strings.TrimSuffix(strings.Trim(term, `"`), "*"))
			if term == "" {
				continue
			}
			if strings.HasPrefix(lowerEscaped[i:], term) {
				out.WriteString("<mark>")
				out.WriteString(escaped[i : i+len(term)])
				out.WriteString("</mark>")
				i += len(term)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(escaped[i])
			i++
		}
	}
	return out.String()
}
