package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stock_dashboard/internal/feature/profile/domain/entity"
	"stock_dashboard/internal/feature/profile/usecase"
)

// ProfileRedis implements usecase.ProfileRepository using Redis.
type ProfileRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.ProfileRepository = (*ProfileRedis)(nil)

// NewProfileRedis creates a new ProfileRedis instance.
func NewProfileRedis(client *redis.Client, prefix string) *ProfileRedis {
	if prefix == "" {
		prefix = "stock_dashboard"
	}
	return &ProfileRedis{client: client, prefix: prefix}
}

// Key returns the Redis key holding the profile.
func (r *ProfileRedis) Key() string {
	return fmt.Sprintf("%s:%s", r.prefix, entity.StorageKey)
}

// Get retrieves the stored profile.
func (r *ProfileRedis) Get(ctx context.Context) (*entity.Profile, error) {
	data, err := r.client.Get(ctx, r.Key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}

	var p entity.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

// Save overwrites the stored profile. The key never expires.
func (r *ProfileRedis) Save(ctx context.Context, p entity.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return r.client.Set(ctx, r.Key(), data, 0).Err()
}
