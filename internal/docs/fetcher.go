package docs

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	docsapi "google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"daybrief-backend/internal/models"
)

// Fetcher reads Google Docs text on behalf of a user access token.
type Fetcher struct {
	driveEndpoint string
	docsEndpoint  string
	baseClient    *http.Client
}

type Option func(*Fetcher)

// WithEndpoints points the Drive and Docs clients at alternate base URLs.
func WithEndpoints(drive, docs string) Option {
	return func(f *Fetcher) {
		f.driveEndpoint = drive
		f.docsEndpoint = docs
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.baseClient = c }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Document is the flattened text of one Google Doc.
type Document struct {
	ID      string
	Title   string
	URL     string
	Content string
}

func (f *Fetcher) clientOptions(ctx context.Context, accessToken, endpoint string) []option.ClientOption {
	if f.baseClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.baseClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}

// FetchText resolves the file metadata and then walks the document body.
func (f *Fetcher) FetchText(ctx context.Context, accessToken, fileID string) (*Document, error) {
	driveSvc, err := drive.NewService(ctx, f.clientOptions(ctx, accessToken, f.driveEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	meta, err := driveSvc.Files.Get(fileID).Fields("id,name,webViewLink").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive metadata %s: %w", fileID, err)
	}

	docsSvc, err := docsapi.NewService(ctx, f.clientOptions(ctx, accessToken, f.docsEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("docs client: %w", err)
	}
	doc, err := docsSvc.Documents.Get(fileID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("docs content %s: %w", fileID, err)
	}

	out := &Document{
		ID:    fileID,
		Title: meta.Name,
		URL:   meta.WebViewLink,
	}
	if out.Title == "" {
		out.Title = "Untitled Document"
	}
	if out.URL == "" {
		out.URL = "https://docs.google.com/document/d/" + fileID
	}
	if doc.Body != nil {
		out.Content = strings.TrimSpace(flatten(doc.Body.Content))
	}
	return out, nil
}

// flatten renders paragraphs newline-terminated and table cells tab-terminated.
func flatten(elements []*docsapi.StructuralElement) string {
	var b strings.Builder
	for _, el := range elements {
		if el == nil {
			continue
		}
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe != nil && pe.TextRun != nil {
					b.WriteString(pe.TextRun.Content)
				}
			}
			b.WriteString("\n")
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				if row == nil {
					continue
				}
				for _, cell := range row.TableCells {
					if cell == nil || cell.Content == nil {
						continue
					}
					b.WriteString(strings.TrimSpace(flatten(cell.Content)))
					b.WriteString("\t")
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// CheckAccess reports whether the token can read Drive at all.
func (f *Fetcher) CheckAccess(ctx context.Context, accessToken string) bool {
	driveSvc, err := drive.NewService(ctx, f.clientOptions(ctx, accessToken, f.driveEndpoint)...)
	if err != nil {
		return false
	}
	if _, err := driveSvc.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		log.Printf("⚠ Drive access probe failed: %v", err)
		return false
	}
	return true
}

// Enrich fills Content for doc attachments that have none. Failures are
// logged and leave the attachment untouched.
func (f *Fetcher) Enrich(ctx context.Context, accessToken string, attachments []models.DocumentAttachment) {
	if accessToken == "" {
		if len(attachments) > 0 {
			log.Println("⚠ No access token available for document fetching")
		}
		return
	}
	for i := range attachments {
		att := &attachments[i]
		if att.Type != models.AttachmentDoc || att.Content != "" {
			continue
		}
		doc, err := f.FetchText(ctx, accessToken, att.ID)
		if err != nil {
			log.Printf("⚠ Failed to fetch document %s: %v", att.ID, err)
			continue
		}
		att.Content = doc.Content
		log.Printf("✓ Fetched document %s (%d chars)", att.ID, len(doc.Content))
	}
}
