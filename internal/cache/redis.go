package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "billinghub:cache"

// Redis shares the cache between console instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

type redisEntry struct {
	Generation uint64              `json:"generation"`
	Items      []domain.EntityItem `json:"items"`
}

func dataKey(k Key) string {
	return fmt.Sprintf("%s:data:%s:%s:%s", keyPrefix, k.ConnectionID, k.Platform, k.Kind)
}

func genKey(k Key) string {
	return fmt.Sprintf("%s:gen:%s:%s:%s", keyPrefix, k.ConnectionID, k.Platform, k.Kind)
}

func connKey(connectionID string) string {
	return fmt.Sprintf("%s:conn:%s", keyPrefix, connectionID)
}

func parseCounter(v any) uint64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseUint(s, 10, 64)
	return n
}

func (r *Redis) Generation(ctx context.Context, key Key) (uint64, error) {
	vals, err := r.client.MGet(ctx, genKey(key), connKey(key.ConnectionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("cache generation %s: %w", key, err)
	}
	return parseCounter(vals[0]) + parseCounter(vals[1]), nil
}

func (r *Redis) Get(ctx context.Context, key Key) ([]domain.EntityItem, bool, error) {
	vals, err := r.client.MGet(ctx, dataKey(key), genKey(key), connKey(key.ConnectionID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, false, nil
	}
	var entry redisEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	if entry.Generation != parseCounter(vals[1])+parseCounter(vals[2]) {
		return nil, false, nil
	}
	if entry.Items == nil {
		entry.Items = []domain.EntityItem{}
	}
	return entry.Items, true, nil
}

func (r *Redis) Put(ctx context.Context, key Key, items []domain.EntityItem, gen uint64) error {
	payload, err := json.Marshal(redisEntry{Generation: gen, Items: items})
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, dataKey(key), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, genKey(k))
			pipe.Del(ctx, dataKey(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (r *Redis) InvalidateConnection(ctx context.Context, connectionID string) error {
	if err := r.client.Incr(ctx, connKey(connectionID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate connection %s: %w", connectionID, err)
	}

	pattern := fmt.Sprintf("%s:data:%s:*", keyPrefix, connectionID)
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var stale []string
	for iter.Next(ctx) {
		stale = append(stale, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache scan connection %s: %w", connectionID, err)
	}
	if len(stale) == 0 {
		return nil
	}
	return r.client.Del(ctx, stale...).Err()
}

var _ Store = (*Redis)(nil)
