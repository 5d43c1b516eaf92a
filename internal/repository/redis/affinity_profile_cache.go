package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stylShop/business/personalize"
	"stylShop/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const DefaultProfileTTL = 24 * time.Hour

// AffinityProfileCache is a read-through, write-through cache in front of a
// durable profile repository. Redis failures never fail a call on their own;
// the durable store stays the source of truth.
type AffinityProfileCache struct {
	client *redis.Client
	next   personalize.ProfileRepository
	ttl    time.Duration
}

var _ personalize.ProfileRepository = (*AffinityProfileCache)(nil)

func NewAffinityProfileCache(client *redis.Client, next personalize.ProfileRepository, ttl time.Duration) *AffinityProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &AffinityProfileCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

func profileKey(userID uint) string {
	return fmt.Sprintf("personalize:profile:%d", userID)
}

func (c *AffinityProfileCache) GetProfile(ctx context.Context, userID uint) (*personalize.AffinityProfile, error) {
	key := profileKey(userID)

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p personalize.AffinityProfile
		if err := json.Unmarshal(val, &p); err == nil {
			return &p, nil
		}
		logger.Warn("profile_cache_corrupt", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn("profile_cache_get_failed", "key", key, "error", err)
	}

	p, err := c.next.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		c.set(ctx, key, p)
	}
	return p, nil
}

func (c *AffinityProfileCache) SaveProfile(ctx context.Context, userID uint, profile *personalize.AffinityProfile) error {
	key := profileKey(userID)

	if err := c.next.SaveProfile(ctx, userID, profile); err != nil {
		// a stale entry would otherwise outlive the failed write
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			logger.Warn("profile_cache_del_failed", "key", key, "error", delErr)
		}
		return err
	}

	c.set(ctx, key, profile)
	return nil
}

func (c *AffinityProfileCache) set(ctx context.Context, key string, p *personalize.AffinityProfile) {
	raw, err := json.Marshal(p)
	if err != nil {
		logger.Warn("profile_cache_marshal_failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("profile_cache_set_failed", "key", key, "error", err)
	}
}
