package cache_test

import (
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/infrastructure/cache"
	"coffeeStatApp/pkg/generator"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*cache.RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisRepositoryWithClient(client, time.Hour, time.UTC), mr
}

func testSnapshot(t *testing.T, seed uint64) *model.Snapshot {
	t.Helper()
	window := model.DefaultWindow(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 180)
	ds, err := generator.GenerateSeeded(25, model.DefaultCatalog(), window, seed)
	require.NoError(t, err)
	return &model.Snapshot{
		RunID:       fmt.Sprintf("run-%d", seed),
		GeneratedAt: time.Unix(1700000000+int64(seed), 0).UTC(),
		Dataset:     ds,
	}
}

func TestRedisRepository(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))

	snap := testSnapshot(t, 1)

	// Test SaveSnapshot
	require.NoError(t, repo.SaveSnapshot(ctx, snap))
	assert.True(t, mr.Exists(snap.Dataset.Params.Key()))
	assert.Equal(t, time.Hour, mr.TTL(snap.Dataset.Params.Key()))

	// Test GetSnapshot
	got, err := repo.GetSnapshot(ctx, snap.Dataset.Params)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.RunID, got.RunID)
	assert.True(t, snap.GeneratedAt.Equal(got.GeneratedAt))
	assert.Equal(t, snap.Dataset.Params, got.Dataset.Params)
	require.Len(t, got.Dataset.Transactions, 25)

	for i, want := range snap.Dataset.Transactions {
		have := got.Dataset.Transactions[i]
		assert.Equal(t, want.OrderID, have.OrderID)
		assert.True(t, want.Timestamp.Equal(have.Timestamp))
		assert.Equal(t, want.Item, have.Item)
		assert.True(t, want.TotalSales.Equal(have.TotalSales))
		assert.Equal(t, want.PaymentMethod, have.PaymentMethod)
	}
}

func TestRedisRepositoryMiss(t *testing.T) {
	repo, _ := newRepo(t)
	got, err := repo.GetSnapshot(context.Background(), model.GenerationParams{Records: 1, Seed: 2})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisRepositoryExpires(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	snap := testSnapshot(t, 2)
	require.NoError(t, repo.SaveSnapshot(ctx, snap))

	mr.FastForward(2 * time.Hour)

	got, err := repo.GetSnapshot(ctx, snap.Dataset.Params)
	require.NoError(t, err)
	assert.Nil(t, got)
}
