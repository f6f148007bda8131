package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

var (
	ErrLockHeld = errors.New("feed lock held by another instance")
	ErrLockLost = errors.New("feed lock lost")
)

// renewScript extends the lease only if we still own it.
var renewScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end
`)

// releaseScript deletes the key only if we still own it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// FeedLock makes one process the sole collector of a feed. The owner holds a key with a
// TTL and renews it; if the process dies the key expires and another instance can take
// over.
type FeedLock struct {
	rdb   FeedLockClient
	key   string
	owner string
	ttl   time.Duration
	clock clockwork.Clock
	held  atomic.Bool
}

// FeedLockClient is the subset of go-redis the lock needs.
type FeedLockClient interface {
	goredis.Scripter
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
}

func NewFeedLock(rdb FeedLockClient, feedID, owner string, ttl time.Duration, clock clockwork.Clock) *FeedLock {
	return &FeedLock{
		rdb:   rdb,
		key:   feedLockKey(feedID),
		owner: owner,
		ttl:   ttl,
		clock: clock,
	}
}

// Acquire takes the lock, returning ErrLockHeld if another instance owns it.
func (l *FeedLock) Acquire(ctx context.Context) error {
	ok, err := l.rdb.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire feed lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	l.held.Store(true)
	return nil
}

// Renew extends the lease. Returns ErrLockLost if another owner has the key or it expired.
func (l *FeedLock) Renew(ctx context.Context) error {
	res, err := renewScript.Run(ctx, l.rdb, []string{l.key}, l.owner, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to renew feed lock: %w", err)
	}
	if res == 0 {
		l.held.Store(false)
		return ErrLockLost
	}
	return nil
}

// Release gives up the lock if we still own it.
func (l *FeedLock) Release(ctx context.Context) error {
	l.held.Store(false)
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.owner).Err(); err != nil {
		return fmt.Errorf("failed to release feed lock: %w", err)
	}
	return nil
}

// Held reports whether this instance believes it owns the lock.
func (l *FeedLock) Held() bool {
	return l.held.Load()
}

// Hold renews the lease every third of its TTL until ctx is cancelled. onLost runs once
// if the lease is taken over, or if no renewal has succeeded for a whole TTL, since the
// key has expired by then. Other renewal errors are logged and retried on the next tick.
func (l *FeedLock) Hold(ctx context.Context, onLost func()) {
	interval := l.ttl / 3
	lastRenewed := l.clock.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.clock.After(interval):
		}

		err := l.Renew(ctx)
		switch {
		case err == nil:
			lastRenewed = l.clock.Now()
			continue
		case errors.Is(err, ErrLockLost):
			slog.Error("Feed lock lost, another instance took over", "key", l.key, "owner", l.owner)
		case ctx.Err() != nil:
			return
		case l.clock.Since(lastRenewed) >= l.ttl:
			l.held.Store(false)
			slog.Error("Feed lock expired, renewals failing", "key", l.key, "owner", l.owner, "error", err)
		default:
			slog.Warn("Feed lock renewal failed", "key", l.key, "error", err)
			continue
		}

		onLost()
		return
	}
}

func feedLockKey(feedID string) string {
	return "collector:lock:" + feedID
}
