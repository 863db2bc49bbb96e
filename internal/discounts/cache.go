package discounts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
	"github.com/offerhubhq/offerhub-backend/pkg/redis"
)

// Cache is a read-through cache for code lookups on the hot checkout path.
// It is best effort: misses and transport failures fall back to the database.
type Cache interface {
	GetCode(ctx context.Context, normalized string) (*models.DiscountCode, bool)
	SetCode(ctx context.Context, code *models.DiscountCode)
	InvalidateCode(ctx context.Context, normalized string)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewCache builds a redis-backed code cache.
func NewCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) Cache {
	return &redisCache{client: client, ttl: ttl, logg: logg}
}

func (c *redisCache) GetCode(ctx context.Context, normalized string) (*models.DiscountCode, bool) {
	raw, err := c.client.Get(ctx, c.client.DiscountCodeKey(normalized))
	if err != nil {
		if !redis.Nil(err) {
			c.logg.Warn(ctx, "discount code cache read failed")
		}
		return nil, false
	}
	var code models.DiscountCode
	if err := json.Unmarshal([]byte(raw), &code); err != nil {
		c.logg.Warn(ctx, "discount code cache entry corrupt, dropping")
		_ = c.client.Del(ctx, c.client.DiscountCodeKey(normalized))
		return nil, false
	}
	return &code, true
}

func (c *redisCache) SetCode(ctx context.Context, code *models.DiscountCode) {
	payload, err := json.Marshal(code)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.client.DiscountCodeKey(code.Code), payload, c.ttl); err != nil {
		c.logg.Warn(ctx, "discount code cache write failed")
	}
}

func (c *redisCache) InvalidateCode(ctx context.Context, normalized string) {
	if err := c.client.Del(ctx, c.client.DiscountCodeKey(normalized)); err != nil {
		c.logg.Warn(ctx, "discount code cache invalidation failed")
	}
}

// NopCache satisfies Cache when redis is not configured.
type NopCache struct{}

func (NopCache) GetCode(ctx context.Context, normalized string) (*models.DiscountCode, bool) {
	return nil, false
}

func (NopCache) SetCode(ctx context.Context, code *models.DiscountCode) {}

func (NopCache) InvalidateCode(ctx context.Context, normalized string) {}
