// Package prompt renders calendar events into LLM instructions.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"daybrief-backend/internal/models"
)

const (
	MaxDescriptionChars = 1500
	MaxDocumentChars    = 3000
	maxListedAttendees  = 5
	clockLayout         = "3:04 PM"
)

// BuildSummary renders the user prompt for one event. It has no side effects.
func BuildSummary(event models.NormalizedEvent, timezone string) string {
	loc := models.LoadLocation(timezone)

	var b strings.Builder
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Title: %s\n", event.Title)
	fmt.Fprintf(&b, "- Time: %s–%s (%s)\n", clock(event.StartsAt, loc), clock(event.EndsAt, loc), timezone)
	fmt.Fprintf(&b, "- Organizer: %s <%s>\n", organizerField(event.Organizer, false), organizerField(event.Organizer, true))
	fmt.Fprintf(&b, "- Attendees (%d): %s\n", len(event.Attendees), attendeeList(event.Attendees))
	fmt.Fprintf(&b, "- Location/Link: %s\n", firstNonEmpty(event.Location, event.HTMLLink, "Not specified"))
	b.WriteString("- Description/Agenda:\n")
	if event.Description != "" {
		b.WriteString(Truncate(event.Description, MaxDescriptionChars))
	} else {
		b.WriteString("No description provided")
	}

	documents := documentBlocks(event.Attachments)
	if documents != "" {
		b.WriteString("\n\nDocument Content:")
		b.WriteString(documents)
	}

	task1 := "1) Produce a crisp summary in 4–7 bullets focused on purpose, decisions, and outcomes"
	if documents != "" {
		task1 += ". Include insights from attached documents"
	}
	b.WriteString("\n\nTasks:\n")
	b.WriteString(task1 + ".\n")
	b.WriteString(`2) Extract explicit action items as a JSON array of strings: ["Owner: Task — Due (if any)", ...]. Include action items from both meeting context and attached documents. If none, return [].` + "\n")
	b.WriteString("3) Provide a confidence score [0.0–1.0] based on clarity/amount of context.\n")
	b.WriteString(`
Output JSON strictly as:
{
  "summaryMd": "markdown bullets only",
  "actionItems": ["..."],
  "confidence": 0.0
}`)
	return b.String()
}

// Truncate cuts s to max runes and marks the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func clock(iso string, loc *time.Location) string {
	t, err := models.ParseEventTime(iso, loc)
	if err != nil {
		return iso
	}
	return t.In(loc).Format(clockLayout)
}

func organizerField(o *models.Organizer, email bool) string {
	if o == nil {
		return "Unknown"
	}
	if email {
		return firstNonEmpty(o.Email, "Unknown")
	}
	return firstNonEmpty(o.Name, "Unknown")
}

func attendeeList(attendees []models.Attendee) string {
	n := len(attendees)
	shown := attendees
	if n > maxListedAttendees {
		shown = attendees[:maxListedAttendees]
	}
	names := make([]string, 0, len(shown))
	for _, a := range shown {
		names = append(names, firstNonEmpty(a.Name, a.Email))
	}
	out := strings.Join(names, ", ")
	if n > maxListedAttendees {
		out += fmt.Sprintf(", +%d more", n-maxListedAttendees)
	}
	return out
}

func documentBlocks(attachments []models.DocumentAttachment) string {
	var blocks []string
	for _, att := range attachments {
		if strings.TrimSpace(att.Content) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("\n--- %s ---\n%s", att.Title, Truncate(att.Content, MaxDocumentChars)))
	}
	return strings.Join(blocks, "\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
