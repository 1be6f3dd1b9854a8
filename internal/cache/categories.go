package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/catalog/internal/domain"

	"github.com/redis/go-redis/v9"
)

type CategoryCache interface {
	// GetCategories reports a miss with ok == false and a nil error.
	GetCategories(ctx context.Context) (categories []domain.Category, ok bool, err error)
	SetCategories(ctx context.Context, categories []domain.Category) error
}

type redisCategoryCache struct {
	redisClient *redis.Client
	key         string
	ttl         time.Duration
}

func NewRedisCategoryCache(redisClient *redis.Client, ttl time.Duration) CategoryCache {
	return &redisCategoryCache{
		redisClient: redisClient,
		key:         "catalog:categories",
		ttl:         ttl,
	}
}

func (c *redisCategoryCache) GetCategories(ctx context.Context) ([]domain.Category, bool, error) {
	val, err := c.redisClient.Get(ctx, c.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached categories: %w", err)
	}

	var categories []domain.Category
	if err := json.Unmarshal([]byte(val), &categories); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached categories: %w", err)
	}

	return categories, true, nil
}

func (c *redisCategoryCache) SetCategories(ctx context.Context, categories []domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	if err := c.redisClient.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache categories: %w", err)
	}
	return nil
}
