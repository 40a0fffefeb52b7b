package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"daybrief-backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps OAuth state values and API refresh tokens.
type SessionStore interface {
	SaveState(ctx context.Context, state string, provider models.Provider, ttl time.Duration) error
	ConsumeState(ctx context.Context, state string) (models.Provider, error)
	SaveRefresh(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	ConsumeRefresh(ctx context.Context, token string) (uuid.UUID, error)
	DeleteRefresh(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// RedisSessions stores sessions under oauth_state:, refresh: and
// user_sessions: keys.
type RedisSessions struct {
	redis *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{redis: client}
}

func (s *RedisSessions) SaveState(ctx context.Context, state string, provider models.Provider, ttl time.Duration) error {
	return s.redis.Set(ctx, "oauth_state:"+state, string(provider), ttl).Err()
}

func (s *RedisSessions) ConsumeState(ctx context.Context, state string) (models.Provider, error) {
	val, err := s.redis.GetDel(ctx, "oauth_state:"+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return models.Provider(val), nil
}

func (s *RedisSessions) SaveRefresh(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, "refresh:"+token, userID.String(), ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), token)
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisSessions) ConsumeRefresh(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.redis.GetDel(ctx, "refresh:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in refresh token: %w", err)
	}
	s.redis.SRem(ctx, userSessionsKey(userID), token)
	return userID, nil
}

func (s *RedisSessions) DeleteRefresh(ctx context.Context, token string) error {
	_, err := s.ConsumeRefresh(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *RedisSessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	key := userSessionsKey(userID)
	tokens, err := s.redis.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, "refresh:"+t)
	}
	keys = append(keys, key)
	return s.redis.Del(ctx, keys...).Err()
}

func userSessionsKey(userID uuid.UUID) string {
	return "user_sessions:" + userID.String()
}
