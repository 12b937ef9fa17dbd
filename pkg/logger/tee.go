package logger

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler sends each record to the local handler and to a remote one.
// A failing remote never hides the local record.
type teeHandler struct {
	local, remote slog.Handler
}

func (h teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.local.Enabled(ctx, level) || h.remote.Enabled(ctx, level)
}

func (h teeHandler) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	if h.local.Enabled(ctx, rec.Level) {
		errs = append(errs, h.local.Handle(ctx, rec.Clone()))
	}
	if h.remote.Enabled(ctx, rec.Level) {
		errs = append(errs, h.remote.Handle(ctx, rec.Clone()))
	}
	return errors.Join(errs...)
}

func (h teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{local: h.local.WithAttrs(attrs), remote: h.remote.WithAttrs(attrs)}
}

func (h teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{local: h.local.WithGroup(name), remote: h.remote.WithGroup(name)}
}
