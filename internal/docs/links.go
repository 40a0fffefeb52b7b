package docs

import (
	"regexp"
	"strings"

	"daybrief-backend/internal/models"
)

const (
	mimeGoogleDoc   = "application/vnd.google-apps.document"
	mimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	mimePDF         = "application/pdf"
)

// ProviderAttachment is file metadata attached to an event by the calendar provider.
type ProviderAttachment struct {
	FileID   string
	Title    string
	MimeType string
	FileURL  string
}

type linkPattern struct {
	re     *regexp.Regexp
	typ    models.AttachmentType
	prefix string
}

var linkPatterns = []linkPattern{
	{regexp.MustCompile(`https://docs\.google\.com/document/d/([a-zA-Z0-9_-]+)`), models.AttachmentDoc, "Document"},
	{regexp.MustCompile(`https://docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`), models.AttachmentSheet, "Spreadsheet"},
	{regexp.MustCompile(`https://drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`), models.AttachmentOther, "File"},
}

// ExtractLinks classifies provider attachments by MIME type, then scans the
// description for bare Docs, Sheets and Drive links. Each pattern runs
// independently over the whole text. The first occurrence of an id wins.
func ExtractLinks(description string, attachments []ProviderAttachment) []models.DocumentAttachment {
	var out []models.DocumentAttachment
	seen := make(map[string]bool)
	add := func(a models.DocumentAttachment) {
		if a.ID == "" || seen[a.ID] {
			return
		}
		seen[a.ID] = true
		out = append(out, a)
	}

	for _, att := range attachments {
		typ, ok := classify(att)
		if !ok {
			continue
		}
		add(models.DocumentAttachment{ID: att.FileID, Title: att.Title, URL: att.FileURL, Type: typ})
	}

	if description == "" {
		return out
	}
	for _, p := range linkPatterns {
		for _, m := range p.re.FindAllStringSubmatch(description, -1) {
			add(models.DocumentAttachment{
				ID:    m[1],
				Title: p.prefix + " " + m[1],
				URL:   m[0],
				Type:  p.typ,
			})
		}
	}
	return out
}

func classify(att ProviderAttachment) (models.AttachmentType, bool) {
	switch att.MimeType {
	case mimeGoogleDoc:
		return models.AttachmentDoc, true
	case mimeGoogleSheet:
		return models.AttachmentSheet, true
	case mimePDF:
		return models.AttachmentPDF, true
	}
	if strings.Contains(att.FileURL, "drive.google.com") {
		return models.AttachmentOther, true
	}
	return "", false
}
