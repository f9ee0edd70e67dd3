package jobinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/growindia/jobs/recruitment/job"
)

const facetCacheKey = "jobs:facets:v1"

// RedisFacetCache implements job.FacetCache on Redis
type RedisFacetCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ job.FacetCache = (*RedisFacetCache)(nil)

// NewRedisFacetCache creates a facet cache whose entries expire after ttl
func NewRedisFacetCache(client *redis.Client, ttl time.Duration) *RedisFacetCache {
	return &RedisFacetCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns nil without error on a miss
func (c *RedisFacetCache) Get(ctx context.Context) (*job.Facets, error) {
	val, err := c.client.Get(ctx, facetCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get facets: %w", err)
	}

	var facets job.Facets
	if err := json.Unmarshal(val, &facets); err != nil {
		return nil, fmt.Errorf("decode facets: %w", err)
	}
	return &facets, nil
}

// Set stores facets with the configured TTL
func (c *RedisFacetCache) Set(ctx context.Context, facets job.Facets) error {
	data, err := json.Marshal(facets)
	if err != nil {
		return fmt.Errorf("encode facets: %w", err)
	}
	if err := c.client.Set(ctx, facetCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set facets: %w", err)
	}
	return nil
}
