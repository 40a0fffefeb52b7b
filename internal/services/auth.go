package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"daybrief-backend/internal/calendar"
	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/models"
	"daybrief-backend/internal/repository"
)

const (
	oauthStateTTL   = 10 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type profileFetcher interface {
	Fetch(ctx context.Context, provider models.Provider, accessToken string) (*calendar.Profile, error)
}

type tokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
}

// AuthService signs users in through a calendar provider and issues API
// tokens.
type AuthService struct {
	users    userStore
	accounts accountStore
	sessions SessionStore
	jwt      tokenIssuer
	profiles profileFetcher
	oauth    map[models.Provider]*oauth2.Config
}

func NewAuthService(users userStore, accounts accountStore, sessions SessionStore, jwt tokenIssuer, profiles profileFetcher, oauth map[models.Provider]*oauth2.Config) *AuthService {
	return &AuthService{
		users:    users,
		accounts: accounts,
		sessions: sessions,
		jwt:      jwt,
		profiles: profiles,
		oauth:    oauth,
	}
}

func (s *AuthService) config(provider models.Provider) (*oauth2.Config, error) {
	cfg, ok := s.oauth[provider]
	if !ok || cfg == nil || cfg.ClientID == "" {
		return nil, &ValidationError{
			Message: "Unsupported provider",
			Fields:  map[string]string{"provider": fmt.Sprintf("%s sign-in is not configured", provider)},
		}
	}
	return cfg, nil
}

// AuthURL returns the provider consent URL with a fresh single-use state.
func (s *AuthService) AuthURL(ctx context.Context, provider models.Provider) (string, error) {
	cfg, err := s.config(provider)
	if err != nil {
		return "", err
	}
	state, err := generateToken(16)
	if err != nil {
		return "", err
	}
	if err := s.sessions.SaveState(ctx, state, provider, oauthStateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	if provider == models.ProviderGoogle {
		return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
	}
	return cfg.AuthCodeURL(state), nil
}

// HandleCallback completes the OAuth code flow. The first sign-in creates
// the user; every sign-in refreshes the stored provider tokens.
func (s *AuthService) HandleCallback(ctx context.Context, provider models.Provider, state, code string) (*models.AuthTokens, error) {
	cfg, err := s.config(provider)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, &ValidationError{Message: "Missing authorization code", Fields: map[string]string{"code": "required"}}
	}

	stored, err := s.sessions.ConsumeState(ctx, state)
	if err != nil || stored != provider {
		return nil, &UnauthorizedError{Message: "Invalid or expired OAuth state"}
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Printf("✗ %s code exchange failed: %v", provider, err)
		return nil, &UnauthorizedError{Message: "Failed to exchange authorization code"}
	}

	profile, err := s.profiles.Fetch(ctx, provider, tok.AccessToken)
	if err != nil {
		return nil, &UpstreamError{Service: string(provider), Message: "Failed to load profile", Err: err}
	}
	if profile.Email == "" || profile.ID == "" {
		return nil, &ValidationError{Message: "Account is missing an email address", Fields: map[string]string{"email": "required"}}
	}

	user, err := s.findOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:            user.ID,
		Provider:          provider,
		ProviderAccountID: profile.ID,
		AccessToken:       tok.AccessToken,
		RefreshToken:      tok.RefreshToken,
		TokenType:         tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		account.ExpiresAt = &expiry
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		account.Scope = scope
	}
	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to store account: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("⚠ failed to update last login for %s: %v", user.ID, err)
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) findOrCreateUser(ctx context.Context, profile *calendar.Profile) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user = &models.User{Email: profile.Email, Name: profile.Name, Timezone: models.DefaultTimezone}
	if profile.Picture != "" {
		picture := profile.Picture
		user.Image = &picture
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("✓ Created user %s", user.ID)
	return user, nil
}

// RefreshToken rotates a refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	if refreshToken == "" {
		return nil, &ValidationError{Message: "Missing refresh token", Fields: map[string]string{"refresh_token": "required"}}
	}
	userID, err := s.sessions.ConsumeRefresh(ctx, refreshToken)
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
		}
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.DeleteRefresh(ctx, refreshToken)
}

// RevokeAll drops every refresh token of the user.
func (s *AuthService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.RevokeAll(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SaveRefresh(ctx, refreshToken, user.ID, refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
	}, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
