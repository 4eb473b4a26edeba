package statestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mobile/backend/internal/testhelpers"
)

type prefs struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

func TestStore_PutGetDelete(t *testing.T) {
	rdb := testhelpers.NewFakeRedis()
	s := New(rdb, nil)
	ctx := context.Background()
	id := uuid.New()
	key := OnboardingKey(id)

	var got prefs
	assert.ErrorIs(t, s.Get(ctx, key, &got), ErrNotFound)

	require.NoError(t, s.Put(ctx, key, prefs{Theme: "dark", Language: "en"}, OnboardingTTL))
	assert.Equal(t, OnboardingTTL, rdb.TTLOf(key))

	require.NoError(t, s.Get(ctx, key, &got))
	assert.Equal(t, prefs{Theme: "dark", Language: "en"}, got)

	// last write wins
	require.NoError(t, s.Put(ctx, key, prefs{Theme: "light"}, OnboardingTTL))
	require.NoError(t, s.Get(ctx, key, &got))
	assert.Equal(t, "light", got.Theme)

	require.NoError(t, s.Delete(ctx, key))
	assert.ErrorIs(t, s.Get(ctx, key, &got), ErrNotFound)
	require.NoError(t, s.Delete(ctx, key))
}

func TestStore_UndecodableValueIsNotFound(t *testing.T) {
	rdb := testhelpers.NewFakeRedis()
	rdb.SetRaw("state:preferences:x", "{not json")
	var got prefs
	assert.ErrorIs(t, New(rdb, nil).Get(context.Background(), "state:preferences:x", &got), ErrNotFound)
}

func TestStore_RedisErrors(t *testing.T) {
	rdb := testhelpers.NewFakeRedis()
	rdb.Err = errors.New("connection refused")
	s := New(rdb, nil)
	ctx := context.Background()

	var got prefs
	err := s.Get(ctx, "k", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.Put(ctx, "k", got, 0))
	assert.Error(t, s.Delete(ctx, "k"))
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	assert.Equal(t, "state:preferences:11111111-1111-1111-1111-111111111111", PreferencesKey(id))
	assert.Equal(t, "state:onboarding:11111111-1111-1111-1111-111111111111", OnboardingKey(id))
	assert.Equal(t, "state:recipe_form:11111111-1111-1111-1111-111111111111", RecipeFormKey(id))
	assert.Equal(t, "recipe:draft:11111111-1111-1111-1111-111111111111", DraftKey(id))
	assert.Equal(t, 7*24*time.Hour, RecipeFormTTL)
}

func TestStore_Redis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	s := New(client, nil)
	ctx := context.Background()
	key := RecipeFormKey(uuid.New())

	require.NoError(t, s.Put(ctx, key, prefs{Theme: "system"}, RecipeFormTTL))
	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.InDelta(t, RecipeFormTTL.Seconds(), ttl.Seconds(), 5)

	var got prefs
	require.NoError(t, s.Get(ctx, key, &got))
	assert.Equal(t, "system", got.Theme)
}
