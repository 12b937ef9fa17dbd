package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Checks maps probe names to their functions.
type Checks map[string]CheckFunc

// Response is the aggregated readiness report.
type Response struct {
	Status string           `json:"status"`
	Checks map[string]Check `json:"checks,omitempty"`
}

// Check is the outcome of a single probe.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy reports whether every probe passed.
func (r *Response) Healthy() bool { return r.Status == StatusHealthy }

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures probe execution.
type Option func(*config)

// WithTimeout bounds the whole run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing probes at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{timeout: 5 * time.Second, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks concurrently and collects their results.
// A probe still running when the timeout expires is reported with
// ErrCheckTimeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return run(ctx, checks, newConfig(opts...))
}

func run(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		g       errgroup.Group
	)

	for name, check := range checks {
		g.Go(func() error {
			res := Check{Status: StatusHealthy}
			if err := probe(ctx, check); err != nil {
				res = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{Status: StatusHealthy, Checks: results}
	for _, c := range results {
		if c.Status != StatusHealthy {
			resp.Status = StatusUnhealthy
			break
		}
	}
	return resp
}

func probe(ctx context.Context, check CheckFunc) error {
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Join(ErrCheckTimeout, ctx.Err())
	}
}
