package database

import (
	"context"
	"fmt"
	"symptom-checker-go/pkg/log"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis 初始化 Redis 客户端连接
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}

// RedisCounter 基于 INCR + EXPIRE 实现固定窗口计数。
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter 创建一个基于 Redis 的计数器。
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

// Incr 对 key 自增并返回当前窗口内的计数。INCR 与 TTL 在同一事务中执行；
// key 没有过期时间时（窗口内第一次写入，或之前的 EXPIRE 失败）补设过期时间，
// 避免计数 key 永久存在。
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("failed to incr %s: %w", key, err)
	}

	count := incr.Val()
	if needsExpire(ttl.Val()) {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("failed to expire %s: %w", key, err)
		}
	}
	return count, nil
}

// needsExpire 判断 TTL 命令的结果是否表示 key 没有过期时间。
// go-redis 对 -1（无过期）与 -2（不存在）原样返回负值。
func needsExpire(ttl time.Duration) bool {
	return ttl < 0
}
