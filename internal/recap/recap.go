// Package recap renders a day's stored summaries into a digest.
package recap

import (
	"fmt"
	"strings"

	blackfriday "github.com/russross/blackfriday/v2"

	"daybrief-backend/internal/models"
)

const previewChars = 200

// Digest is the rendered recap. Empty means there was nothing to send.
type Digest struct {
	Date     string
	Markdown string
	Empty    bool
}

func Heading(date string) string {
	return "# Your DayBrief — " + date
}

func Subject(date string) string {
	return "Your DayBrief — " + date
}

// Compose renders summaries in the order given, one section per summary.
func Compose(summaries []*models.Summary, date, timezone, settingsURL string) Digest {
	if len(summaries) == 0 {
		return Digest{
			Date:     date,
			Markdown: Heading(date) + "\n\nNo meetings today 🎉\n\n—\nSent by DayBrief",
			Empty:    true,
		}
	}

	loc := models.LoadLocation(timezone)
	var b strings.Builder
	b.WriteString(Heading(date))
	b.WriteString("\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "\n## %s — %s\n", s.StartsAt.In(loc).Format("3:04 PM"), s.Title)
		b.WriteString(strings.TrimRight(s.SummaryMd, "\n"))
		b.WriteString("\n\n**Action Items**\n")
		if len(s.ActionItems) == 0 {
			b.WriteString("- None\n")
			continue
		}
		for _, item := range s.ActionItems {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	b.WriteString("\n—\nSent by DayBrief")
	if settingsURL != "" {
		fmt.Fprintf(&b, " • [Update Settings](%s)", settingsURL)
	}
	return Digest{Date: date, Markdown: b.String()}
}

var htmlExtensions = blackfriday.CommonExtensions |
	blackfriday.HardLineBreak |
	blackfriday.NoEmptyLineBeforeBlock

// RenderHTML converts the digest markdown for the email body.
func RenderHTML(markdown string) string {
	body := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(htmlExtensions))
	return `<!DOCTYPE html><html><head><meta charset="utf-8"></head>` +
		`<body style="font-family: 'Segoe UI', Arial, sans-serif; color: #1e293b; max-width: 640px; margin: 24px auto; line-height: 1.5;">` +
		string(body) + `</body></html>`
}

// Preview returns the first 200 runes of content followed by "...".
func Preview(content string) string {
	r := []rune(content)
	if len(r) > previewChars {
		r = r[:previewChars]
	}
	return string(r) + "..."
}
