package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTimezone = "America/Los_Angeles"

type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Image           *string    `json:"image"`
	Timezone        string     `json:"timezone"`
	RecapEmail      bool       `json:"recapEmail"`
	RecapSlack      bool       `json:"recapSlack"`
	SlackUserID     *string    `json:"slackUserId"`
	RecapLastSentOn *string    `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastLoginAt     *time.Time `json:"lastLoginAt"`
}

// Account links a user to one OAuth provider identity.
type Account struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Provider          Provider   `json:"provider"`
	ProviderAccountID string     `json:"provider_account_id"`
	AccessToken       string     `json:"-"`
	RefreshToken      string     `json:"-"`
	ExpiresAt         *time.Time `json:"expires_at"`
	TokenType         string     `json:"token_type"`
	Scope             string     `json:"scope"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// UpdateSettingsRequest is a partial update; nil fields are left alone.
type UpdateSettingsRequest struct {
	Timezone    *string `json:"timezone"`
	RecapEmail  *bool   `json:"recapEmail"`
	RecapSlack  *bool   `json:"recapSlack"`
	SlackUserID *string `json:"slackUserId"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
