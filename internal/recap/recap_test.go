package recap

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daybrief-backend/internal/models"
)

func TestCompose_NoSummaries(t *testing.T) {
	d := Compose(nil, "2024-01-15", "UTC", "https://app.example/settings")

	assert.True(t, d.Empty)
	assert.Equal(t, "# Your DayBrief — 2024-01-15\n\nNo meetings today 🎉\n\n—\nSent by DayBrief", d.Markdown)
}

func TestCompose_SectionsInInputOrder(t *testing.T) {
	summaries := []*models.Summary{
		{
			Title:       "Morning Standup",
			StartsAt:    time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC),
			SummaryMd:   "- Discussed blockers",
			ActionItems: []string{"Ana: fix CI", "Bo: review PR"},
		},
		{
			Title:       "Design Review",
			StartsAt:    time.Date(2024, 1, 15, 21, 30, 0, 0, time.UTC),
			SummaryMd:   "- Approved mockups\n",
			ActionItems: []string{},
		},
	}

	d := Compose(summaries, "2024-01-15", "America/Los_Angeles", "https://app.example/settings")
	md := d.Markdown

	assert.False(t, d.Empty)
	assert.True(t, strings.HasPrefix(md, "# Your DayBrief — 2024-01-15\n"))
	assert.Contains(t, md, "## 9:00 AM — Morning Standup\n- Discussed blockers\n\n**Action Items**\n- Ana: fix CI\n- Bo: review PR\n")
	assert.Contains(t, md, "## 1:30 PM — Design Review\n- Approved mockups\n\n**Action Items**\n- None\n")
	assert.Less(t, strings.Index(md, "Morning Standup"), strings.Index(md, "Design Review"))
	assert.Equal(t, 2, strings.Count(md, "\n## "))
	assert.True(t, strings.HasSuffix(md, "—\nSent by DayBrief • [Update Settings](https://app.example/settings)"))
}

func TestRenderHTML(t *testing.T) {
	html := RenderHTML("# Your DayBrief — 2024-01-15\n\n## 9:00 AM — Standup\n- one\n- two\n\n**Action Items**\n- None\n")

	assert.Contains(t, html, "<h1>Your DayBrief — 2024-01-15</h1>")
	assert.Contains(t, html, "<h2>9:00 AM — Standup</h2>")
	assert.Contains(t, html, "<li>one</li>")
	assert.Contains(t, html, "<strong>Action Items</strong>")
	assert.Contains(t, html, "<ul>")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short...", Preview("short"))
	long := strings.Repeat("é", 250)
	assert.Equal(t, strings.Repeat("é", 200)+"...", Preview(long))
}
