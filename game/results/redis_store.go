package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	resultKeyPrefix = "bagatelle:result:"
	resultIndexKey  = "bagatelle:results"
)

// Connect opens a Redis client from a redis:// URL and verifies it with PING
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// RedisStore keeps each result as a JSON string plus a newest-first index list
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing client
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Save stores the result and pushes its id onto the index
func (rs *RedisStore) Save(ctx context.Context, result *Result) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	if result.ID == "" {
		return fmt.Errorf("result id is required")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	pipe := rs.rdb.TxPipeline()
	pipe.Set(ctx, resultKey(result.ID), data, 0)
	pipe.LPush(ctx, resultIndexKey, result.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// Get loads one result by id
func (rs *RedisStore) Get(ctx context.Context, id string) (*Result, error) {
	data, err := rs.rdb.Get(ctx, resultKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &r, nil
}

// List walks the index newest first, skipping ids whose payload has expired or been removed
func (rs *RedisStore) List(ctx context.Context, limit int) ([]*Result, error) {
	limit = normalizeLimit(limit)

	ids, err := rs.rdb.LRange(ctx, resultIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	list := make([]*Result, 0, len(ids))
	for _, id := range ids {
		r, err := rs.Get(ctx, id)
		if err == ErrResultNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, nil
}

// Close closes the underlying client
func (rs *RedisStore) Close() error {
	return rs.rdb.Close()
}

func resultKey(id string) string {
	return resultKeyPrefix + id
}
