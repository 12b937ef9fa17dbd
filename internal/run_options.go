package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

type domainApp struct {
	pattern string
	app     *App
}

type runConfig struct {
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownHooks   []func(context.Context) error
	domains         []domainApp
	fallback        *App
	baseCtx         context.Context
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Address sets the listen address. Default: ":8080".
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Logger sets the server lifecycle logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds graceful shutdown, hooks included. Default: 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// Timeouts overrides the server read and write timeouts. Zero keeps the
// default (15s read, 30s write).
func Timeouts(read, write time.Duration) RunOption {
	return func(c *runConfig) {
		if read > 0 {
			c.readTimeout = read
		}
		if write > 0 {
			c.writeTimeout = write
		}
	}
}

// ShutdownHook registers cleanup run after the server stops, in
// registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// Domain serves app for a host pattern: "api.example.com" or
// "*.example.com".
func Domain(pattern string, app *App) RunOption {
	return func(c *runConfig) {
		if pattern != "" && app != nil {
			c.domains = append(c.domains, domainApp{pattern: pattern, app: app})
		}
	}
}

// Fallback serves requests matching no Domain. Without domains it is the
// only handler.
func Fallback(app *App) RunOption {
	return func(c *runConfig) {
		if app != nil {
			c.fallback = app
		}
	}
}

// WithContext sets the parent of the signal context.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
