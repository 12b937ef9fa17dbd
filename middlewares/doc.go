// Package middlewares provides kernel middleware for request IDs, panic
// recovery, locale selection and Prometheus metrics.
//
// Middleware wraps the dispatch handler, so it sees the routing outcome
// after calling next: the matched pattern (kernel.RoutePattern), the bound
// controller and the final status.
//
//	locales, _ := i18n.New(i18n.WithLanguages("en", "fr"))
//
//	app := kernel.New(
//	    kernel.WithLocales(locales),
//	    kernel.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Metrics(),
//	        middlewares.Recover(),
//	        middlewares.Locale(locales),
//	    ),
//	)
//
// Order matters: Metrics placed outside Recover counts recovered panics as
// 500 responses.
//
// # Request ID
//
// RequestID reuses X-Request-ID, X-Request-Id or X-Correlation-ID when
// present and generates a UUID otherwise. RequestIDExtractor adds the ID to
// every log record written with the request context, and
// RequestIDSpanAttributes adds it to the router.Dispatch span.
//
// # Locale
//
// Locale sets the request language from the "lang" query parameter, the
// "lang" cookie or Accept-Language. A locale segment in the path ("/fr/...")
// is applied during dispatch and takes precedence.
//
// # Metrics
//
// Metrics labels requests by method, status and route pattern, never by raw
// path. CacheCollector exports hit and miss counts of a cache.
package middlewares
