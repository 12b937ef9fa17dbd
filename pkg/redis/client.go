package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connection errors. Underlying causes are joined to them.
var (
	ErrNoURL       = errors.New("redis: connection url is empty")
	ErrInvalidURL  = errors.New("redis: invalid connection url")
	ErrUnreachable = errors.New("redis: server unreachable")
	ErrPing        = errors.New("redis: ping failed")
)

// Option configures a connection.
type Option func(*options)

type options struct {
	poolSize    int
	minIdle     int
	dialTimeout time.Duration
	ioTimeout   time.Duration
	attempts    int
	backoff     time.Duration
	logger      *slog.Logger
}

// WithPoolSize sets the maximum number of pooled connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(o *options) { o.poolSize = n }
}

// WithMinIdleConns sets the number of idle connections kept open. Default: 2.
func WithMinIdleConns(n int) Option {
	return func(o *options) { o.minIdle = n }
}

// WithTimeouts sets the dial timeout and the read/write timeout.
func WithTimeouts(dial, io time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = dial
		o.ioTimeout = io
	}
}

// WithRetry sets how many times Open pings before giving up.
// The wait between attempts grows linearly from backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.backoff = backoff
	}
}

// WithLogger reports failed connection attempts.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open parses a redis:// or rediss:// URL and returns a client that has
// answered a PING.
//
//	client, err := redis.Open(ctx, cfg.Cache.RedisURL, redis.WithRetry(5, time.Second))
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidURL
	}

	o := &options{
		poolSize:    10,
		minIdle:     2,
		dialTimeout: 5 * time.Second,
		ioTimeout:   3 * time.Second,
		attempts:    3,
		backoff:     time.Second,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	ro.PoolSize = o.poolSize
	ro.MinIdleConns = o.minIdle
	ro.DialTimeout = o.dialTimeout
	ro.ReadTimeout = o.ioTimeout
	ro.WriteTimeout = o.ioTimeout

	var lastErr error
	for i := range max(o.attempts, 1) {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		o.logger.WarnContext(ctx, "redis ping failed",
			slog.String("addr", ro.Addr),
			slog.Int("attempt", i+1),
			slog.Any("error", lastErr),
		)

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrUnreachable, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.backoff):
		}
	}

	return nil, errors.Join(ErrUnreachable, lastErr)
}

// Healthcheck returns a readiness probe that pings the client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrPing
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrPing, err)
		}
		return nil
	}
}

// Shutdown adapts a client to a shutdown hook.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
