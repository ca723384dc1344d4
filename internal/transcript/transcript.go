// Package transcript stages conversation excerpts in redis under a
// random secret, so the forum side can retrieve them for post
// composition. Entries expire after an hour.
package transcript

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "forumbridge:transcript:"
	ttl       = time.Hour
)

// ErrNotFound is returned when a secret has no staged transcript,
// either because it never existed or because it expired.
var ErrNotFound = errors.New("transcript not found")

// Store is the redis-backed transcript staging cache.
type Store struct {
	client *redis.Client
}

// New creates a Store on the given redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Save stages text under a fresh random secret and returns the secret.
func (s *Store) Save(ctx context.Context, text string) (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf[:])

	if err := s.client.Set(ctx, keyPrefix+secret, text, ttl).Err(); err != nil {
		return "", fmt.Errorf("store transcript: %w", err)
	}
	return secret, nil
}

// Load retrieves the transcript staged under secret.
func (s *Store) Load(ctx context.Context, secret string) (string, error) {
	val, err := s.client.Get(ctx, keyPrefix+secret).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load transcript: %w", err)
	}
	return val, nil
}
