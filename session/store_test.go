package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(time.Hour)
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			s := NewRedisStore(mr.Addr(), "", time.Hour)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			sess, err := s.Create(ctx, "user-1", "pilot")
			require.NoError(t, err)
			assert.NotEmpty(t, sess.ID)

			got, err := s.Get(ctx, sess.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "user-1", got.UserID)
			assert.Equal(t, "pilot", got.Username)

			require.NoError(t, s.Touch(ctx, got))

			missing, err := s.Get(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, s.Delete(ctx, sess.ID))
			got, err = s.Get(ctx, sess.ID)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sess, err := s.Create(ctx, "user-1", "pilot")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, 1, s.CleanupExpired())
	assert.Equal(t, 0, s.CleanupExpired())
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", time.Hour)
	require.NoError(t, s.Ping(ctx))

	sess, err := s.Create(ctx, "user-1", "pilot")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+sess.ID))

	mr.FastForward(2 * time.Hour)
	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
