package redis

import (
	"context"
	"fmt"

	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient parses redisURL, installs the metrics hook and verifies the connection.
// m may be nil.
func NewClient(ctx context.Context, redisURL string, m *metrics.RedisMetrics) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	// feed reads rely on the caller's deadline
	opts.ContextTimeoutEnabled = true

	rdb := goredis.NewClient(opts)
	if m != nil {
		rdb.AddHook(&MetricsHook{metrics: m})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}
