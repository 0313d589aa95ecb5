package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Record is the server-side session payload. The userId key is part of the
// wire contract and must not change.
type Record struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store binds opaque session identifiers to user identifiers in Redis with
// a sliding TTL. One identifier maps to at most one user.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

// Create mints an unguessable session identifier bound to userID.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("userID required")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(buf)

	data, err := json.Marshal(Record{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+id, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set: %w", err)
	}
	return id, nil
}

// Resolve returns the user identifier bound to id, or ErrSessionNotFound
// when the session is unknown or already expired out of the store.
func (s *Store) Resolve(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return "", fmt.Errorf("unmarshal session: %w", err)
	}
	if rec.UserID == "" {
		return "", ErrSessionNotFound
	}
	return rec.UserID, nil
}

// Touch resets the sliding expiry window.
func (s *Store) Touch(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Expire(ctx, s.prefix+id, s.ttl).Err()
}

// Destroy removes the session. Deleting an unknown identifier is not an
// error; callers may retry or fire-and-forget freely.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
