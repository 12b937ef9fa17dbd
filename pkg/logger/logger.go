package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Option configures a logger.
type Option func(*config)

type config struct {
	w          io.Writer
	format     Format
	level      slog.Leveler
	extractors []ContextExtractor
}

// WithWriter sets the destination. Default: os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.w = w }
}

// WithFormat selects JSON (servers) or text (CLI) output.
func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithLevel sets the minimum level. Default: info.
func WithLevel(l slog.Leveler) Option {
	return func(c *config) { c.level = l }
}

// WithExtractors adds request-scoped attributes to every record.
func WithExtractors(ex ...ContextExtractor) Option {
	return func(c *config) { c.extractors = append(c.extractors, ex...) }
}

// ParseLevel maps "debug", "info", "warn" and "error" to a level.
// Unknown names yield info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// New creates a structured logger.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(middlewares.RequestIDExtractor()),
//	)
func New(opts ...Option) *slog.Logger {
	cfg := newConfig(opts...)
	return slog.New(NewLogHandlerDecorator(cfg.handler(), cfg.extractors...))
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newConfig(opts ...Option) *config {
	cfg := &config{w: os.Stdout, format: FormatJSON, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: c.level}
	if c.format == FormatText {
		return slog.NewTextHandler(c.w, ho)
	}
	return slog.NewJSONHandler(c.w, ho)
}
