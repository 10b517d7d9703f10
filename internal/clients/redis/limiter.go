package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type LimiterConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// Max attempts per Window for a single key.
	Max    int
	Window time.Duration
}

// Limiter is a fixed-window attempt counter shared across API replicas.
type Limiter interface {
	// Allow counts one attempt for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
	Close() error
}

type limiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	max    int64
	window time.Duration
}

func NewLimiter(ctx context.Context, log *logger.Logger, cfg LimiterConfig) (Limiter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "wk:ratelimit"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &limiter{
		log:    log.With("client", "RedisLimiter"),
		rdb:    rdb,
		prefix: cfg.Prefix,
		max:    int64(cfg.Max),
		window: cfg.Window,
	}, nil
}

func (l *limiter) key(k string) string { return l.prefix + ":" + k }

func (l *limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	n := incr.Val()
	if n > l.max {
		l.log.Debug("rate limit exceeded", "key", key, "count", n)
		return false, nil
	}
	return true, nil
}

func (l *limiter) Reset(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (l *limiter) Close() error { return l.rdb.Close() }
