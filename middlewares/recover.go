package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/kernel/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover turns a panic in the chain, including inside controller methods,
// into a *PanicError naming the matched route and bound controller.
//
// When nothing has been written yet, the 500 is rendered through the
// request Output in its negotiated content type, so a panicking ".json"
// request still gets an error envelope. The panic value is never shown.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				if v := recover(); v != nil {
					err = cfg.recovered(c, v)
				}
			}()

			return next(c)
		}
	}
}

func (cfg *RecoverConfig) recovered(c internal.Context, v any) *PanicError {
	pe := &PanicError{
		Value:      v,
		Route:      internal.RoutePattern(c),
		Controller: internal.ControllerName(c),
	}
	if !cfg.DisablePrintStack {
		buf := make([]byte, cfg.StackSize)
		pe.Stack = buf[:runtime.Stack(buf, false)]
	}

	attrs := []slog.Attr{
		slog.Any("panic", v),
		slog.String("path", c.Request().URL.Path),
	}
	if pe.Route != "" {
		attrs = append(attrs, slog.String("route", pe.Route))
	}
	if pe.Controller != "" {
		attrs = append(attrs, slog.String("controller", pe.Controller))
	}
	if pe.Stack != nil {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	c.Logger().LogAttrs(c, slog.LevelError, "panic recovered", attrs...)

	span := trace.SpanFromContext(c)
	span.RecordError(pe)
	span.SetStatus(codes.Error, "panic")

	if !c.Written() && !c.Output().Sent() {
		if err := c.Output().SendError(http.StatusInternalServerError); err != nil {
			c.Logger().DebugContext(c, "panic response not rendered", slog.Any("error", err))
		}
	}
	return pe
}
