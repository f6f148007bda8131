package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	"github.com/pscheid92/tradesbychat/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const (
	defaultBatchSize   = 200
	defaultFeedTimeout = 5 * time.Second
)

// startCursor asks for the newest entry on first read; older chat is never replayed.
const startCursor = ""

// FeedOptions tunes a CommentFeed. Zero values fall back to defaults.
type FeedOptions struct {
	BatchSize int64
	Timeout   time.Duration
}

// CommentFeed implements domain.CommentFeed on top of a Redis stream. Each Fetch returns
// the entries appended since the previous one, up to the batch size.
type CommentFeed struct {
	rdb     goredis.Cmdable
	stream  string
	batch   int64
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker

	mu     sync.Mutex
	cursor string
}

func NewCommentFeed(rdb goredis.Cmdable, feedID string, opts FeedOptions, m *metrics.RedisMetrics) *CommentFeed {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFeedTimeout
	}
	return &CommentFeed{
		rdb:     rdb,
		stream:  chatStreamKey(feedID),
		batch:   opts.BatchSize,
		timeout: opts.Timeout,
		breaker: newBreaker("comment_feed", m),
		cursor:  startCursor,
	}
}

func (f *CommentFeed) Fetch(ctx context.Context) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.read(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", domain.ErrFeedUnavailable, err)
		}
		return nil, fmt.Errorf("read chat stream %s: %w", f.stream, err)
	}
	return result.([]domain.Comment), nil
}

// BreakerState reports the circuit breaker state, for health checks.
func (f *CommentFeed) BreakerState() gobreaker.State {
	return f.breaker.State()
}

func (f *CommentFeed) read(ctx context.Context) ([]domain.Comment, error) {
	if f.cursor == startCursor {
		cursor, err := f.latestID(ctx)
		if err != nil {
			return nil, err
		}
		f.cursor = cursor
	}

	streams, err := f.rdb.XRead(ctx, &goredis.XReadArgs{
		Streams: []string{f.stream, f.cursor},
		Count:   f.batch,
		Block:   -1, // never block; the poller owns pacing
	}).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var comments []domain.Comment
	for _, s := range streams {
		for _, msg := range s.Messages {
			f.cursor = msg.ID
			c, ok := parseEntry(msg)
			if !ok {
				slog.WarnContext(ctx, "Skipping malformed chat entry", "stream", f.stream, "id", msg.ID)
				continue
			}
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// latestID returns the ID of the newest stream entry, or "0-0" for an empty stream.
func (f *CommentFeed) latestID(ctx context.Context) (string, error) {
	msgs, err := f.rdb.XRevRangeN(ctx, f.stream, "+", "-", 1).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("find stream tail: %w", err)
	}
	if len(msgs) == 0 {
		return "0-0", nil
	}
	return msgs[0].ID, nil
}

func parseEntry(msg goredis.XMessage) (domain.Comment, bool) {
	voterID, ok := msg.Values["voter_id"].(string)
	if !ok || voterID == "" {
		return domain.Comment{}, false
	}
	text, ok := msg.Values["text"].(string)
	if !ok {
		return domain.Comment{}, false
	}
	name, _ := msg.Values["voter_name"].(string)
	if name == "" {
		name = voterID
	}
	return domain.Comment{VoterID: voterID, VoterName: name, Text: text}, true
}

func chatStreamKey(feedID string) string {
	return "chat:" + feedID
}
