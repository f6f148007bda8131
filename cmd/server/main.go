package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tradesbychat/internal/adapter/httpserver"
	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	"github.com/pscheid92/tradesbychat/internal/adapter/postgres"
	"github.com/pscheid92/tradesbychat/internal/adapter/redis"
	"github.com/pscheid92/tradesbychat/internal/dispatch"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/pscheid92/tradesbychat/internal/platform/config"
	"github.com/pscheid92/tradesbychat/internal/platform/logging"
	"github.com/pscheid92/tradesbychat/internal/platform/retry"
	"github.com/pscheid92/tradesbychat/internal/platform/version"
	"github.com/pscheid92/tradesbychat/internal/vote"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const startupTimeout = 10 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(cfg *config.Config, m *metrics.RedisMetrics) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, m)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupDB(cfg *config.Config, m *metrics.DBMetrics) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, m)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	return pool
}

// setupDispatcher picks where decisions go and puts the position guard in front.
func setupDispatcher(cfg *config.Config, rdb *goredis.Client, clock clockwork.Clock) domain.ActionDispatcher {
	var sink domain.ActionDispatcher
	if cfg.PublishDecisions {
		sink = redis.NewDecisionPublisher(rdb, cfg.FeedID, cfg.TradingSymbol, cfg.TradingAccount, clock)
	} else {
		sink = dispatch.NewLogDispatcher(cfg.TradingSymbol, cfg.TradingAccount)
	}
	return dispatch.NewPositionGuard(sink)
}

func instanceID(cfg *config.Config) string {
	if cfg.InstanceID != "" {
		return cfg.InstanceID
	}
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// acquireFeedLock waits for a previous collector on the same feed to let go.
func acquireFeedLock(cfg *config.Config, lock *redis.FeedLock, clock clockwork.Clock) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*cfg.FeedLockTTL)
	defer cancel()

	policy := retry.Policy{
		MaxAttempts:    10,
		InitialBackoff: time.Second,
		MaxBackoff:     cfg.FeedLockTTL,
		Clock:          clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Info("Feed lock busy, waiting", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	if err := retry.DoVoid(ctx, policy, retry.Transient, lock.Acquire); err != nil {
		slog.Error("Failed to acquire feed lock", "feed_id", cfg.FeedID, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed lock acquired", "feed_id", cfg.FeedID)
}

func healthChecks(rdb *goredis.Client, pool *pgxpool.Pool, feed *redis.CommentFeed, lock *redis.FeedLock) []httpserver.HealthCheck {
	checks := []httpserver.HealthCheck{
		{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		{Name: "feed_lock", Check: func(context.Context) error {
			if !lock.Held() {
				return redis.ErrLockLost
			}
			return nil
		}},
		{Name: "comment_feed", Check: func(context.Context) error {
			if state := feed.BreakerState(); state == gobreaker.StateOpen {
				return fmt.Errorf("circuit breaker is %s", state)
			}
			return nil
		}},
	}
	if pool != nil {
		checks = append(checks, httpserver.HealthCheck{Name: "postgres", Check: pool.Ping})
	}
	return checks
}

func runGracefulShutdown(srv *httpserver.Server, collector *vote.Collector, lock *redis.FeedLock, stopHolding context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		collector.Stop()
		stopHolding()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := lock.Release(shutdownCtx); err != nil {
			slog.Error("Failed to release feed lock", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", append([]any{"env", cfg.AppEnv, "port", cfg.Port, "feed_id", cfg.FeedID}, version.Get().LogAttrs()...)...)
	slog.Info("Trading context", "symbol", cfg.TradingSymbol, "account", cfg.TradingAccount, "connection", cfg.AccountConnection)

	reg := metrics.NewRegistry(version.Get())
	voteMetrics := metrics.NewVoteMetrics(reg)
	redisMetrics := metrics.NewRedisMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	redisClient := setupRedis(cfg, redisMetrics)
	defer func() { _ = redisClient.Close() }()

	feed := redis.NewCommentFeed(redisClient, cfg.FeedID, redis.FeedOptions{
		BatchSize: int64(cfg.FeedBatchSize),
		Timeout:   cfg.FeedTimeout,
	}, redisMetrics)

	opts := []vote.Option{
		vote.WithClock(clock),
		vote.WithInterval(cfg.RoundInterval()),
		vote.WithPollDelay(cfg.PollInterval),
		vote.WithMetrics(voteMetrics),
	}

	// Keep history a nil interface when disabled
	var (
		pool    *pgxpool.Pool
		history domain.RoundHistory
	)
	if cfg.HistoryEnabled() {
		pool = setupDB(cfg, metrics.NewDBMetrics(reg))
		defer pool.Close()

		rounds := postgres.NewRoundRepo(pool, cfg.FeedID)
		history = rounds
		opts = append(opts, vote.WithRecorder(rounds))
	} else {
		slog.Info("DATABASE_URL not set, round history disabled")
	}

	collector, err := vote.NewCollector(feed, setupDispatcher(cfg, redisClient, clock), opts...)
	if err != nil {
		slog.Error("Failed to create vote collector", "error", err)
		os.Exit(1)
	}

	lock := redis.NewFeedLock(redisClient, cfg.FeedID, instanceID(cfg), cfg.FeedLockTTL, clock)
	srv := httpserver.NewServer(cfg, collector, history, reg, httpMetrics, healthChecks(redisClient, pool, feed, lock))

	acquireFeedLock(cfg, lock, clock)

	lockCtx, stopHolding := context.WithCancel(context.Background())
	defer stopHolding()
	go lock.Hold(lockCtx, func() {
		slog.Error("Feed lock lost, stopping vote collection", "feed_id", cfg.FeedID)
		collector.Stop()
	})

	if err := collector.Start(context.Background()); err != nil {
		slog.Error("Failed to start vote collector", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, collector, lock, stopHolding)

	if err := srv.Start(); err != nil {
		slog.Error("Server error", "error", err)
		collector.Stop()
		os.Exit(1)
	}

	<-done
}
