package divert

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisKey         = "relval:diverted"
	defaultRedisDialTimeout = 5 * time.Second
)

// redisSink appends diverted records to a Redis list.
type redisSink struct {
	client *redis.Client
	key    string

	closeOnce sync.Once
	closeErr  error
}

// openRedis connects to a redis:// URL and checks the server answers.
func openRedis(ctx context.Context, target string, retries int) (Sink, error) {
	client, key, err := newRedisClient(target, retries)
	if err != nil {
		return nil, err
	}

	s := &redisSink{client: client, key: key}
	if err := s.pingWithRetry(ctx, client.Options().MaxRetries); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return s, nil
}

// newRedisClient builds a client for target without connecting. The list
// name is taken from the "key" query parameter; the rest of the URL is
// passed to go-redis. A negative retries keeps the go-redis default.
func newRedisClient(target string, retries int) (*redis.Client, string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, "", fmt.Errorf("parsing redis url: %w", err)
	}
	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = defaultRedisKey
	}
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, "", fmt.Errorf("parsing redis url: %w", err)
	}
	switch {
	case retries == 0:
		// go-redis reads 0 as "use the default"; -1 disables retries.
		opts.MaxRetries = -1
	case retries > 0:
		opts.MaxRetries = retries
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultRedisDialTimeout
	}
	return redis.NewClient(opts), key, nil
}

func (s *redisSink) WriteLine(ctx context.Context, line []byte) error {
	err := s.client.RPush(ctx, s.key, line).Err()
	if errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%w: %w", os.ErrClosed, err)
	}
	return err
}

// Close releases Redis resources. It is idempotent.
func (s *redisSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func (s *redisSink) pingWithRetry(ctx context.Context, maxRetries int) error {
	attempts := maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	backoff := 100 * time.Millisecond
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = s.client.Ping(ctx).Err(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}
