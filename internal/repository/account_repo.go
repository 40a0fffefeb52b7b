package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"daybrief-backend/internal/models"
)

// TokenSealer encrypts OAuth tokens at rest.
type TokenSealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

type AccountRepo struct {
	db     DB
	sealer TokenSealer
}

// NewAccountRepo stores tokens in plaintext when sealer is nil.
func NewAccountRepo(db DB, sealer TokenSealer) *AccountRepo {
	return &AccountRepo{db: db, sealer: sealer}
}

func (r *AccountRepo) seal(v string) (string, error) {
	if r.sealer == nil || v == "" {
		return v, nil
	}
	return r.sealer.Seal(v)
}

func (r *AccountRepo) open(v *string) (string, error) {
	if v == nil {
		return "", nil
	}
	if r.sealer == nil {
		return *v, nil
	}
	return r.sealer.Open(*v)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Upsert links the provider identity to a.UserID. A missing refresh token
// keeps the one already stored.
func (r *AccountRepo) Upsert(ctx context.Context, a *models.Account) error {
	access, err := r.seal(a.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := r.seal(a.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	query := `INSERT INTO accounts (id, user_id, provider, provider_account_id, access_token, refresh_token, expires_at, token_type, scope)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (provider, provider_account_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, accounts.refresh_token),
			expires_at = EXCLUDED.expires_at,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			updated_at = NOW()
		RETURNING id, user_id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		uuid.New(), a.UserID, string(a.Provider), a.ProviderAccountID,
		nullable(access), nullable(refresh), a.ExpiresAt, a.TokenType, a.Scope,
	).Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByUser returns the most recently updated account for the user.
func (r *AccountRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	query := `SELECT id, user_id, provider, provider_account_id, access_token, refresh_token,
			expires_at, COALESCE(token_type, ''), COALESCE(scope, ''), created_at, updated_at
		FROM accounts WHERE user_id = $1
		ORDER BY updated_at DESC LIMIT 1`

	var (
		a               models.Account
		provider        string
		access, refresh *string
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.UserID, &provider, &a.ProviderAccountID, &access, &refresh,
		&a.ExpiresAt, &a.TokenType, &a.Scope, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	a.Provider = models.Provider(provider)
	if a.AccessToken, err = r.open(access); err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}
	if a.RefreshToken, err = r.open(refresh); err != nil {
		return nil, fmt.Errorf("open refresh token: %w", err)
	}
	return &a, nil
}

// UpdateAccessToken overwrites the stored access token in place.
func (r *AccountRepo) UpdateAccessToken(ctx context.Context, id uuid.UUID, accessToken string, expiresAt *time.Time) error {
	sealed, err := r.seal(accessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		"UPDATE accounts SET access_token = $2, expires_at = $3, updated_at = NOW() WHERE id = $1",
		id, sealed, expiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
