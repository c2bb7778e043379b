package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/douradolabs/backoffice/internal/api/metrics"
	"github.com/douradolabs/backoffice/internal/core/domain"
	"github.com/douradolabs/backoffice/internal/core/ports"
)

const listCacheTTL = 5 * time.Minute

// ListCache holds the users-list projection in Redis. All methods are
// best-effort: a Redis failure only forces the caller back to the store.
type ListCache struct {
	client *redis.Client
}

func NewListCache(client *redis.Client) *ListCache {
	return &ListCache{client: client}
}

func (c *ListCache) GetUsersList(ctx context.Context) ([]domain.User, bool) {
	payload, err := c.client.Get(ctx, c.key(ports.ProjectionUsersList)).Bytes()
	if err != nil {
		metrics.ProjectionCacheTotal.WithLabelValues(string(ports.ProjectionUsersList), "miss").Inc()
		return nil, false
	}

	var users []domain.User
	if err := json.Unmarshal(payload, &users); err != nil {
		metrics.ProjectionCacheTotal.WithLabelValues(string(ports.ProjectionUsersList), "miss").Inc()
		return nil, false
	}
	metrics.ProjectionCacheTotal.WithLabelValues(string(ports.ProjectionUsersList), "hit").Inc()
	return users, true
}

func (c *ListCache) SetUsersList(ctx context.Context, users []domain.User) {
	payload, err := json.Marshal(users)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(ports.ProjectionUsersList), payload, listCacheTTL).Err()
}

func (c *ListCache) Invalidate(ctx context.Context, p ports.Projection) {
	_ = c.client.Del(ctx, c.key(p)).Err()
}

func (c *ListCache) key(p ports.Projection) string {
	return "projection:" + string(p)
}
