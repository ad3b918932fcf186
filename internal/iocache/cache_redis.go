package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
	"github.com/redis/go-redis/v9"
)

// redisOpTimeout bounds one cache round trip.
const redisOpTimeout = 3 * time.Second

// Hash fields of one cache entry.
const (
	redisValueField   = "value"
	redisVersionField = "version"
	redisTSField      = "ts"
)

// RedisCacheStore is a key/value cache on Redis. Entries are hashes under
// "<table>:<key>", indexed by timestamp in the "<table>:index" sorted set.
type RedisCacheStore struct {
	client *redis.Client
	prefix string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// DefaultRedisURL is used when no connection string is configured.
const DefaultRedisURL = "redis://localhost:6379/0"

// NewRedisCacheStore connects to Redis using a redis:// URL.
func NewRedisCacheStore(tableName, connStr string) (*RedisCacheStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	if connStr == "" {
		connStr = DefaultRedisURL
	}
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis connection string: %w. Expected redis://[:password@]host:port/db", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = redisOpTimeout
	opts.WriteTimeout = redisOpTimeout

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, contract.WrapError(contract.CodeStorage, err, "failed to connect to redis at %s", opts.Addr)
	}
	return &RedisCacheStore{client: client, prefix: tableName}, nil
}

func (rs *RedisCacheStore) entryKey(key string) string { return rs.prefix + ":" + key }

func (rs *RedisCacheStore) indexKey() string { return rs.prefix + ":index" }

// Get retrieves a value by key. A missing key returns sql.ErrNoRows, like the SQL stores.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := rs.client.HGetAll(ctx, rs.entryKey(key)).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	value, ok := fields[redisValueField]
	if !ok {
		return nil, 0, 0, sql.ErrNoRows
	}
	version, err := strconv.Atoi(fields[redisVersionField])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields[redisTSField], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp for %s: %w", key, err)
	}
	return []byte(value), version, ts, nil
}

// Set inserts or replaces a key/value pair.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rs.entryKey(key),
			redisValueField, value,
			redisVersionField, version,
			redisTSField, timestamp,
		)
		pipe.ZAdd(ctx, rs.indexKey(), redis.Z{Score: float64(timestamp), Member: key})
		return nil
	})
	return err
}

// GetStatus returns status information about the cache.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend)}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := rs.client.Ping(ctx).Err(); err != nil {
		return status, nil
	}
	status.Connected = true

	total, err := rs.client.ZCard(ctx, rs.indexKey()).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	status.TotalEntries = int(total)
	if total == 0 {
		return status, nil
	}

	oldest, err := rs.client.ZRangeWithScores(ctx, rs.indexKey(), 0, 0).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get oldest entry: %w", err)
	}
	newest, err := rs.client.ZRevRangeWithScores(ctx, rs.indexKey(), 0, 0).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get last entry: %w", err)
	}
	if len(oldest) == 0 || len(newest) == 0 {
		return status, nil
	}
	status.OldestEntryTime = time.Unix(int64(oldest[0].Score), 0)
	status.LastEntryTime = time.Unix(int64(newest[0].Score), 0)
	status.TableSizeBytes = total * 1000 // Rough estimate
	return status, nil
}

// Clear removes every entry of the cache.
func (rs *RedisCacheStore) Clear(ctx context.Context) error {
	iter := rs.client.Scan(ctx, 0, rs.prefix+":*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rs.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete redis keys: %w", err)
	}
	return nil
}

// Close closes the Redis connection pool.
func (rs *RedisCacheStore) Close() error {
	return rs.client.Close()
}
