package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound signals a refresh token that is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

const (
	sessionKeyPrefix = "session:"
	userKeyPrefix    = "session:user:"
)

// SessionRepository persists opaque refresh tokens in Redis with a TTL.
// Each token maps to the owning user id; an optional reverse index lets
// single-session mode revoke the previous token on login.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository constructs a Redis-backed session repository.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Save stores a refresh token for the user. When singleSession is set, the
// user's previous token is revoked first.
func (r *SessionRepository) Save(ctx context.Context, token, userID string, ttl time.Duration, singleSession bool) error {
	if singleSession {
		previous, err := r.client.Get(ctx, userKeyPrefix+userID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to load previous session: %w", err)
		}
		if previous != "" {
			if err := r.client.Del(ctx, sessionKeyPrefix+previous).Err(); err != nil {
				return fmt.Errorf("failed to revoke previous session: %w", err)
			}
		}
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+token, userID, ttl)
	pipe.Set(ctx, userKeyPrefix+userID, token, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Lookup resolves a refresh token to its user id.
func (r *SessionRepository) Lookup(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	return userID, nil
}

// Revoke deletes a refresh token.
func (r *SessionRepository) Revoke(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeUser deletes the user's current refresh token, if any.
func (r *SessionRepository) RevokeUser(ctx context.Context, userID string) error {
	token, err := r.client.Get(ctx, userKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to load user session: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.Del(ctx, userKeyPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke user session: %w", err)
	}
	return nil
}
