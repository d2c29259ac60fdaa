package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/macspp/lead-intake/internal/config"
	httpmiddleware "github.com/macspp/lead-intake/internal/http/middleware"
	"github.com/macspp/lead-intake/internal/leads"
	"github.com/macspp/lead-intake/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter prefers a Redis-backed limiter shared across instances
// and falls back to a per-process token bucket.
func BuildRateLimiter(redisClient *redis.Client, cfg *appconfig.Config) httpmiddleware.Limiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	if redisClient != nil {
		return httpmiddleware.NewRedisRateLimiter(redisClient, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}

// BuildRepository connects to Postgres when DATABASE_URL is set, otherwise
// it returns an in-memory store. The returned func releases the pool.
func BuildRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (leads.Repository, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Warn("DATABASE_URL not set; submissions are kept in memory only")
		return leads.NewInMemoryRepository(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	logger.Info("connected to postgres")
	return leads.NewPostgresRepository(pool), pool.Close, nil
}
