package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief-backend/internal/models"
)

func TestExtractLinks_ProviderAttachmentsByMime(t *testing.T) {
	atts := []ProviderAttachment{
		{FileID: "d1", Title: "Agenda", MimeType: "application/vnd.google-apps.document", FileURL: "https://docs.google.com/document/d/d1"},
		{FileID: "s1", Title: "Budget", MimeType: "application/vnd.google-apps.spreadsheet", FileURL: "https://docs.google.com/spreadsheets/d/s1"},
		{FileID: "p1", Title: "Deck.pdf", MimeType: "application/pdf", FileURL: "https://drive.google.com/file/d/p1"},
		{FileID: "o1", Title: "Notes.txt", MimeType: "text/plain", FileURL: "https://drive.google.com/file/d/o1"},
		{FileID: "x1", Title: "External", MimeType: "text/plain", FileURL: "https://example.com/x1"},
	}

	got := ExtractLinks("", atts)
	require.Len(t, got, 4)
	assert.Equal(t, models.AttachmentDoc, got[0].Type)
	assert.Equal(t, "Agenda", got[0].Title)
	assert.Equal(t, models.AttachmentSheet, got[1].Type)
	assert.Equal(t, models.AttachmentPDF, got[2].Type)
	assert.Equal(t, models.AttachmentOther, got[3].Type)
	assert.Equal(t, "o1", got[3].ID)
}

func TestExtractLinks_DescriptionPatterns(t *testing.T) {
	desc := `Prep: https://docs.google.com/document/d/abc_123-X/edit
numbers https://docs.google.com/spreadsheets/d/SHEET9/edit#gid=0
recording https://drive.google.com/file/d/FILE-1/view
again https://docs.google.com/document/d/second`

	got := ExtractLinks(desc, nil)
	require.Len(t, got, 4)

	assert.Equal(t, models.DocumentAttachment{
		ID: "abc_123-X", Title: "Document abc_123-X",
		URL: "https://docs.google.com/document/d/abc_123-X", Type: models.AttachmentDoc,
	}, got[0])
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, models.AttachmentDoc, got[1].Type)
	assert.Equal(t, "Spreadsheet SHEET9", got[2].Title)
	assert.Equal(t, models.AttachmentSheet, got[2].Type)
	assert.Equal(t, "File FILE-1", got[3].Title)
	assert.Equal(t, models.AttachmentOther, got[3].Type)
}

func TestExtractLinks_AttachmentWinsOverDescriptionDuplicate(t *testing.T) {
	atts := []ProviderAttachment{
		{FileID: "d1", Title: "Agenda", MimeType: "application/vnd.google-apps.document", FileURL: "https://docs.google.com/document/d/d1"},
	}
	got := ExtractLinks("see https://docs.google.com/document/d/d1", atts)
	require.Len(t, got, 1)
	assert.Equal(t, "Agenda", got[0].Title)
}

func TestExtractLinks_Empty(t *testing.T) {
	assert.Empty(t, ExtractLinks("", nil))
	assert.Empty(t, ExtractLinks("no links here http://example.com", nil))
}
