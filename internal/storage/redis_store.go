package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/plantpal/internal/plant"
	"github.com/redis/go-redis/v9"
)

// RedisStore 把记录保存在一个不过期的 Redis 字符串键中。
type RedisStore struct {
	rdb *redis.Client
	key string
}

// ConnectRedis 解析 URL 并验证连通性。
func ConnectRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// NewRedisStore 构造 RedisStore，key 为空时使用 plant.StorageKey。
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = plant.StorageKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context, defaults plant.Record) (*plant.Record, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load plant state from redis: %w", err)
	}

	record, err := plant.Decode(raw, defaults)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisStore) Save(ctx context.Context, record plant.Record) error {
	data, err := plant.Encode(record)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save plant state to redis: %w", err)
	}
	return nil
}

// Close 关闭底层连接。
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
