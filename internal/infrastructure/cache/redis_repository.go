package cache

import (
	"coffeeStatApp/internal/app/dto"
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository implements the SnapshotCache interface using Redis as the backend
// It provides fast access to generated datasets with configurable TTL
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	loc    *time.Location
}

func NewRedisRepository(addr, password string, db int, ttl time.Duration, loc *time.Location) *RedisRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisRepositoryWithClient(client, ttl, loc)
}

// NewRedisRepositoryWithClient wraps an existing client.
func NewRedisRepositoryWithClient(client *redis.Client, ttl time.Duration, loc *time.Location) *RedisRepository {
	if loc == nil {
		loc = time.Local
	}
	return &RedisRepository{client: client, ttl: ttl, loc: loc}
}

// Ensure RedisRepository implements the SnapshotCache interface
var _ repository.SnapshotCache = (*RedisRepository)(nil)

// Ping checks the connection
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// SnapshotCache interface implementation
func (r *RedisRepository) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(dto.FromSnapshot(snap))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return r.client.Set(ctx, snap.Dataset.Params.Key(), data, r.ttl).Err()
}

func (r *RedisRepository) GetSnapshot(ctx context.Context, params model.GenerationParams) (*model.Snapshot, error) {
	data, err := r.client.Get(ctx, params.Key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not cached
		}
		return nil, err
	}

	var snapDTO dto.SnapshotDTO
	if err := json.Unmarshal(data, &snapDTO); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return snapDTO.ToModel(r.loc)
}
