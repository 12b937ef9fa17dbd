package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables error reporting alongside local output.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Release     string `yaml:"release"`
	// Errors always become issues; warnings are kept as breadcrumb logs
	// unless MinLevel is error.
	MinLevel slog.Level `yaml:"-"`
}

// NewWithSentry logs locally and forwards warnings and errors to Sentry.
// An empty DSN or a failed SDK init falls back to local output only.
func NewWithSentry(sc SentryConfig, opts ...Option) *slog.Logger {
	cfg := newConfig(opts...)
	local := cfg.handler()

	if sc.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, cfg.extractors...))
	}

	env := sc.Environment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sc.DSN,
		Environment: env,
		Release:     sc.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("sentry init failed", slog.Any("error", err))
		return slog.New(NewLogHandlerDecorator(local, cfg.extractors...))
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if sc.MinLevel >= slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}
	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(teeHandler{local: local, remote: remote}, cfg.extractors...))
}
