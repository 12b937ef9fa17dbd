package internal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrymomot/kernel/pkg/router"
	"github.com/dmitrymomot/kernel/pkg/uri"
)

// Execute runs one routing pass over command line arguments and writes the
// outcome to w as text (or as JSON/XML when the last segment ends in
// .json/.xml).
//
// Positional arguments become path segments; "--key=value" arguments
// become query values. Segments are parsed leniently: disallowed
// characters are stripped instead of rejected.
//
//	app.Execute(ctx, os.Stdout, "GET", "users", "show", "42")
//
// A non-2xx outcome is returned as an error carrying its status code (see
// StatusCodeOf) after the error text is written.
func (a *App) Execute(ctx context.Context, w io.Writer, method string, args ...string) error {
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	var parts []string
	query := url.Values{}
	for _, arg := range args {
		if k, v, ok := strings.Cut(strings.TrimPrefix(arg, "--"), "="); ok && strings.HasPrefix(arg, "--") {
			query.Add(k, v)
			continue
		}
		parts = append(parts, strings.Split(arg, "/")...)
	}

	parserOpts := append(slices.Clone(a.parserOpts), uri.WithLenient(true))
	if a.locales != nil {
		parserOpts = append(parserOpts, uri.WithLocales(a.locales))
	}
	parser := uri.NewParser(parserOpts...)

	segs, err := parser.FromParts(parts)
	if err != nil {
		return err
	}
	u, err := uri.Parse("localhost", uri.WithParser(parser))
	if err != nil {
		return err
	}
	u = u.WithSegments(segs).WithQuery(query)

	lang := segs.Locale()
	if lang == "" && a.locales != nil {
		lang = a.locales.DefaultLanguage()
	}
	var outOpts []OutputOption
	if a.locales != nil {
		outOpts = append(outOpts, WithLines(a.locales, lang))
	}
	out := NewOutput(w, outOpts...)

	env := uri.Env{
		uri.EnvRequestMethod: method,
		uri.EnvRequestURI:    "/" + segs.String(),
		uri.EnvQueryString:   query.Encode(),
	}

	a.logger.DebugContext(ctx, "cli dispatch",
		slog.String("method", method),
		slog.String("path", env[uri.EnvRequestURI]),
	)

	res := a.dispatcher.Dispatch(ctx, router.Request{Method: method, URI: u, Env: env})

	switch v := res.(type) {
	case router.Dispatched:
		if v.ContentType != "" {
			out.SetContentType(v.ContentType)
		}
		result, err := v.Binding.Call(ctx)
		if err != nil {
			return a.cliError(out, err)
		}
		return out.Send(result)

	case router.Payload:
		out.SetContentType(v.ContentType)
		return out.Send(v.Value)

	case router.Status:
		if v.Code == http.StatusNoContent {
			return nil
		}
		if v.ContentType != "" {
			out.SetContentType(v.ContentType)
		}
		return a.cliError(out, NewHTTPError(v.Code, "", WithError(v)))
	}
	return nil
}

func (a *App) cliError(out *Output, err error) error {
	var vars []any
	if he, ok := AsHTTPError(err); ok && he.Message != "" {
		vars = append(vars, he.Message)
	}
	if werr := out.SendError(StatusCodeOf(err), vars...); werr != nil {
		return werr
	}
	return err
}
