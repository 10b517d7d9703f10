package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/worldkernel-backend/internal/clients/redis"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type Clients struct {
	LoginLimiter redis.Limiter
}

// wireClients connects optional external clients. Redis is skipped when REDIS_ADDR is unset.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		lim, err := redis.NewLimiter(ctx, log, redis.LimiterConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "wk:login",
			Max:      cfg.LoginRateLimit,
			Window:   cfg.LoginRateLimitWindow,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis limiter: %w", err)
		}
		out.LoginLimiter = lim
	}
	return out, nil
}

func (c Clients) Close() {
	if c.LoginLimiter != nil {
		_ = c.LoginLimiter.Close()
	}
}
