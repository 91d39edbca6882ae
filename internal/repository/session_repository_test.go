package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/session"
)

// Оба хранилища должны удовлетворять интерфейсу сервиса сессий
var (
	_ session.Store = (*SessionRepository)(nil)
	_ session.Store = (*RedisSessionRepository)(nil)
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func exerciseStore(t *testing.T, store session.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	id := now.UnixNano()

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := &model.Session{
		TelegramID:   id,
		ChatID:       id,
		Email:        "anna@example.com",
		AccessToken:  "a1",
		RefreshToken: "r1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.Save(ctx, s))

	s.AccessToken = "a2"
	s.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.Save(ctx, s))

	got, err = store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)
	assert.True(t, got.CreatedAt.Equal(now))

	all, err := store.List(ctx)
	require.NoError(t, err)
	found := false
	for _, item := range all {
		if item.TelegramID == id {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, store.Delete(ctx, id))
	got, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepository(t *testing.T) {
	pool := openTestDB(t)
	exerciseStore(t, NewSessionRepository(pool))
}

func TestRedisSessionRepository(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRedisSessionRepository(client)
	require.NoError(t, repo.Ping(context.Background()))
	exerciseStore(t, repo)
}
