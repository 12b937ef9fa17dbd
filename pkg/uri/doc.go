// Package uri models inbound request URIs as immutable values.
//
// A [URI] is built either from an absolute URL string with [Parse] or from
// the request environment with [FromEnv]. The path is held as [Segments]:
// ordered, validated, non-empty tokens produced by a [Parser].
//
// # Segments
//
// The parser normalizes raw paths (backslashes become "/", underscores
// become "-", control characters are stripped), validates each token against
// a permitted-characters class and neutralizes tokens that could be injected
// into rendered output. Tokens that name a registered locale are consumed and
// reported through [Segments.Locale] instead of becoming routable segments:
//
//	p := uri.NewParser(uri.WithLocales(lang))
//	segs, err := p.Parse("/id/products/shoes")
//	// segs.Parts() == []string{"products", "shoes"}, segs.Locale() == "id"
//
// In lenient mode (CLI) disallowed characters are sanitized instead of
// rejected.
//
// # Hosts
//
// Hosts are decomposed into subdomains, a parent domain and TLD parts.
// Parts are addressable by ordinal label counted from the right:
//
//	u, _ := uri.Parse("https://blog.example.co.uk/")
//	u.Host()            // "example.co.uk"
//	u.Subdomain()        // "blog"
//	u.SubDomain("4th")   // "blog", true
//	u.TLD("")            // "co.uk", true
//
// # Environment
//
// [Env] is an explicit map of server variables (REQUEST_URI, QUERY_STRING,
// SCRIPT_NAME, HTTP_HOST, ...) passed down the call chain instead of being
// read from process-wide state. [EnvFromRequest] builds one from an
// *http.Request.
package uri
