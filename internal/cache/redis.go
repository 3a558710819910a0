package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guide-exam/internal/config"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects to the session/cache store and fails fast when it is unreachable.
func NewRedisClient(redisCfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redisOptions(redisCfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opt.Addr, err)
	}
	return client, nil
}

// redisOptions accepts either host:port or a redis:// URL. Explicit password and
// db settings win over the ones embedded in a URL.
func redisOptions(redisCfg config.RedisConfig) (*redis.Options, error) {
	addr := strings.TrimSpace(redisCfg.Address)
	if addr == "" {
		return nil, fmt.Errorf("redis address is not configured")
	}

	opt := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opt = parsed
	}
	if redisCfg.Password != "" {
		opt.Password = redisCfg.Password
	}
	if redisCfg.DB != 0 {
		opt.DB = redisCfg.DB
	}
	return opt, nil
}
