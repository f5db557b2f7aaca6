package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
)

// SessionRepository implements repository.SessionRepository using Redis.
// The last raw query of each call is kept under session:<id>:last_query so
// a follow-up request can recover conversational context.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new Redis-backed session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID + ":last_query"
}

// SaveLastQuery records the most recent raw query for a session.
func (r *SessionRepository) SaveLastQuery(ctx context.Context, sessionID, query string) error {
	if err := r.client.Set(ctx, sessionKey(sessionID), query, r.ttl).Err(); err != nil {
		return apperrors.Unavailable("session store: set", err)
	}
	return nil
}

// LastQuery returns the most recent query for a session.
func (r *SessionRepository) LastQuery(ctx context.Context, sessionID string) (string, error) {
	query, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.NotFound("SESSION_NOT_FOUND",
				fmt.Sprintf("no recorded query for session %q", sessionID))
		}
		return "", apperrors.Unavailable("session store: get", err)
	}
	return query, nil
}
