package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hapl/fieldsales/internal/core/domain"
)

// SessionStore keeps one live session token per user.
// Key format: session:<user_id>
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save replaces the user's session token; it expires after ttl.
func (s *SessionStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns the user's live session token or domain.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get session: %w", err)
	}
	return token, nil
}

// Delete removes the user's session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return "session:" + userID
}
