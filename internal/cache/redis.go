package cache

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/pable/go-smite-metrics/internal/table"
)

// Redis backs the table cache with a redis instance, letting repeated runs
// over the same log share computed tables. Values are JSON-encoded tables;
// any decode or transport error is treated as a miss.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis builds a redis-backed cache. prefix namespaces the keys (usually
// the match id); ttl of 0 stores entries without expiry.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(k string) string { return r.prefix + ":" + k }

func (r *Redis) Get(key string) (*table.Table, bool) {
	raw, err := r.client.Get(context.Background(), r.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	var t table.Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false
	}
	return &t, true
}

func (r *Redis) Set(key string, t *table.Table) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	r.client.Set(context.Background(), r.key(key), raw, r.ttl)
}

func (r *Redis) Invalidate(key string) {
	r.client.Del(context.Background(), r.key(key))
}

func (r *Redis) Clear() {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		r.client.Del(ctx, iter.Val())
	}
}
