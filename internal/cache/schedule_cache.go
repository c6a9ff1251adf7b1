// Package cache keeps computed loan schedules in Redis. Terms never change after
// origination, so entries only expire or get dropped on an administrative edit.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

const scheduleKeyPrefix = "sacco:schedule:"

// ScheduleCache stores schedules keyed by loan ID.
type ScheduleCache interface {
	Get(ctx context.Context, loanID uuid.UUID) (*domain.Schedule, bool, error)
	Set(ctx context.Context, loanID uuid.UUID, schedule *domain.Schedule) error
	Invalidate(ctx context.Context, loanID uuid.UUID) error
}

type redisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScheduleCache(client *redis.Client, ttl time.Duration) ScheduleCache {
	return &redisScheduleCache{client: client, ttl: ttl}
}

// Connect opens a Redis client and verifies it answers PING.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func scheduleKey(loanID uuid.UUID) string {
	return scheduleKeyPrefix + loanID.String()
}

func (c *redisScheduleCache) Get(ctx context.Context, loanID uuid.UUID) (*domain.Schedule, bool, error) {
	raw, err := c.client.Get(ctx, scheduleKey(loanID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, customError.WrapCacheError(err)
	}

	var schedule domain.Schedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return nil, false, customError.WrapCacheError(fmt.Errorf("decode schedule: %w", err))
	}

	return &schedule, true, nil
}

func (c *redisScheduleCache) Set(ctx context.Context, loanID uuid.UUID, schedule *domain.Schedule) error {
	raw, err := json.Marshal(schedule)
	if err != nil {
		return customError.WrapCacheError(fmt.Errorf("encode schedule: %w", err))
	}

	if err := c.client.Set(ctx, scheduleKey(loanID), raw, c.ttl).Err(); err != nil {
		return customError.WrapCacheError(err)
	}

	return nil
}

func (c *redisScheduleCache) Invalidate(ctx context.Context, loanID uuid.UUID) error {
	if err := c.client.Del(ctx, scheduleKey(loanID)).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}
