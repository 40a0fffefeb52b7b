package models

import (
	"fmt"
	"strings"
	"time"
)

// Provider identifies the calendar/OAuth provider an event or account belongs to.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
)

// Providers lists every supported provider.
var Providers = []Provider{ProviderGoogle, ProviderMicrosoft}

func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderMicrosoft:
		return true
	}
	return false
}

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unsupported provider %q", s)
	}
	return p, nil
}

type AttachmentType string

const (
	AttachmentDoc   AttachmentType = "doc"
	AttachmentSheet AttachmentType = "sheet"
	AttachmentPDF   AttachmentType = "pdf"
	AttachmentOther AttachmentType = "other"
)

func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentDoc, AttachmentSheet, AttachmentPDF, AttachmentOther:
		return true
	}
	return false
}

type Attendee struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Required bool   `json:"required"`
}

type Organizer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type DocumentAttachment struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	URL     string         `json:"url"`
	Type    AttachmentType `json:"type"`
	Content string         `json:"content,omitempty"`
}

// NormalizedEvent is the provider-agnostic calendar event. StartsAt and
// EndsAt keep the provider's ISO text; all-day events carry no offset.
type NormalizedEvent struct {
	ID          string               `json:"id"`
	Provider    Provider             `json:"provider"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	StartsAt    string               `json:"startsAt"`
	EndsAt      string               `json:"endsAt"`
	Attendees   []Attendee           `json:"attendees"`
	Organizer   *Organizer           `json:"organizer,omitempty"`
	Location    string               `json:"location,omitempty"`
	HTMLLink    string               `json:"htmlLink,omitempty"`
	Attachments []DocumentAttachment `json:"attachments,omitempty"`
}

const localLayout = "2006-01-02T15:04:05"

// ParseEventTime reads an event instant. Values without an offset are
// interpreted in loc.
func ParseEventTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{localLayout, "2006-01-02T15:04:05.9999999", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid event time %q", s)
}

// LoadLocation falls back to UTC for empty or unknown zone names.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseAttachmentType accepts the short names and the older google_* aliases.
func ParseAttachmentType(s string) (AttachmentType, bool) {
	switch s {
	case "google_doc":
		return AttachmentDoc, true
	case "google_sheet":
		return AttachmentSheet, true
	}
	t := AttachmentType(s)
	return t, t.Valid()
}
