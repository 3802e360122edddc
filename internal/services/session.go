package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days.
	SessionDuration = 7 * 24 * time.Hour
	// sessionKeyPrefix is the Redis key prefix for token -> username.
	sessionKeyPrefix = "session:"
)

// Sessions issues and validates opaque bearer tokens backed by Redis.
// Register and login hand the client a token; protected endpoints and the
// middleware validate it. Tokens expire server-side, no refresh endpoint.
type Sessions struct {
	client *redis.Client
}

func NewSessions(client *redis.Client) *Sessions {
	return &Sessions{client: client}
}

// Create issues a new session token for username.
func (s *Sessions) Create(ctx context.Context, username string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	if err := s.client.Set(ctx, sessionKeyPrefix+token, username, SessionDuration).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Validate returns the username bound to the token, or ok=false when the
// token is unknown or expired.
func (s *Sessions) Validate(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}

	username, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return "", false
	}

	return username, true
}

// Invalidate removes a session token.
func (s *Sessions) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}
