// Package statestore persists the per-user client state (preferences, the
// onboarding draft, the recipe form) and generated recipe drafts in Redis.
package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
)

// TTLs per store. Preferences never expire.
const (
	OnboardingTTL  = 30 * 24 * time.Hour
	RecipeFormTTL  = 7 * 24 * time.Hour
	RecipeDraftTTL = 24 * time.Hour
)

// ErrNotFound is returned when a key was never written or has expired
var ErrNotFound = errors.New("state not found")

func PreferencesKey(userID uuid.UUID) string { return "state:preferences:" + userID.String() }

func OnboardingKey(userID uuid.UUID) string { return "state:onboarding:" + userID.String() }

func RecipeFormKey(userID uuid.UUID) string { return "state:recipe_form:" + userID.String() }

func DraftKey(draftID uuid.UUID) string { return "recipe:draft:" + draftID.String() }

// Store is a JSON key/value store over Redis. Writes are last-write-wins.
type Store struct {
	rdb redis.Cmdable
	log *zap.Logger
}

func New(rdb redis.Cmdable, log *zap.Logger) *Store {
	return &Store{rdb: rdb, log: logger.OrNop(log).Named("statestore")}
}

// Get decodes the value at key into dst
func (s *Store) Get(ctx context.Context, key string, dst any) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A value we cannot decode is treated as absent so the client can overwrite it.
		s.log.Warn("discarding undecodable state", zap.String("key", key), zap.Error(err))
		return ErrNotFound
	}
	return nil
}

// Put overwrites the value at key; ttl 0 keeps it forever
func (s *Store) Put(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.log.Debug("state saved", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
