package export

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// stripHTML implements spec.md §4.H's documented Markdown body rule set:
// remove <script>/<style> content entirely, replace <br>/</p> with
// newlines, strip every remaining tag, then collapse 3+ consecutive
// newlines down to 2. Unlike the teacher's rune-scanning stripHTMLTags
// (sync/helpers.go, used only for short preview snippets), this module's
// exported body text needs entity decoding and tag-content skipping, which
// a tokenizer gives for free.
func stripHTML(input string) string {
	var out strings.Builder
	tok := html.NewTokenizer(strings.NewReader(input))
	var skipDepth int

	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return collapseNewlines(out.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			switch tag {
			case "script", "style":
				if tt == html.StartTagToken {
					skipDepth++
				}
			case "br":
				out.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			switch tag {
			case "script", "style":
				if skipDepth > 0 {
					skipDepth--
				}
			case "p", "div":
				out.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth == 0 {
				out.Write(tok.Text())
			}
		}
	}
}

var newlineRun = regexp.MustCompile(`\n{3,}`)

func collapseNewlines(s string) string {
	return newlineRun.ReplaceAllString(strings.TrimSpace(s), "\n\n")
}
