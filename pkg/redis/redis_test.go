package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/pkg/redis"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want error
	}{
		{name: "empty", url: "", want: redis.ErrNoURL},
		{name: "http scheme", url: "http://localhost:6379", want: redis.ErrInvalidURL},
		{name: "no scheme", url: "localhost:6379", want: redis.ErrInvalidURL},
		{name: "bad db", url: "redis://localhost:6379/abc", want: redis.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := redis.Open(context.Background(), tt.url)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, client)
		})
	}
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := redis.Open(ctx, "redis://127.0.0.1:1/0",
		redis.WithRetry(2, 10*time.Millisecond),
		redis.WithTimeouts(100*time.Millisecond, 100*time.Millisecond),
	)
	require.ErrorIs(t, err, redis.ErrUnreachable)
	assert.Nil(t, client)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := redis.Healthcheck(nil)(context.Background())
	assert.ErrorIs(t, err, redis.ErrPing)
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestShutdown(t *testing.T) {
	t.Parallel()

	require.NoError(t, redis.Shutdown(closer{})(context.Background()))

	boom := errors.New("boom")
	assert.ErrorIs(t, redis.Shutdown(closer{err: boom})(context.Background()), boom)
}
