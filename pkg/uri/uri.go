package uri

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
)

// URI is an immutable request URI. Use Parse or FromEnv to build one;
// every With/Add method returns a modified copy.
type URI struct {
	scheme     string
	username   string
	password   string
	host       string
	subdomains []string
	tlds       []string
	port       int
	basePath   []string
	segments   Segments
	query      url.Values
	fragment   string
	suffix     string

	// request target as received, used to avoid re-adding the suffix
	requestURI string
}

type options struct {
	parser   *Parser
	protocol Protocol
	suffix   string
	hasSfx   bool
}

// Option configures Parse and FromEnv.
type Option func(*options)

// WithParser sets the Parser used for the path. Its suffix becomes the
// URI suffix unless WithDefaultSuffix is given.
func WithParser(p *Parser) Option {
	return func(o *options) {
		if p != nil {
			o.parser = p
		}
	}
}

// WithProtocol selects the server variable FromEnv reads the path from.
func WithProtocol(protocol Protocol) Option {
	return func(o *options) {
		o.protocol = protocol
	}
}

// WithDefaultSuffix sets the suffix rendered by String.
func WithDefaultSuffix(suffix string) Option {
	return func(o *options) {
		o.suffix = suffix
		o.hasSfx = true
	}
}

func buildOptions(opts []Option) options {
	o := options{parser: defaultParser, protocol: ProtocolAuto}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasSfx {
		o.suffix = o.parser.Suffix()
	}
	return o
}

// Parse builds a URI from an absolute URL. A missing scheme defaults to http.
func Parse(raw string, opts ...Option) (URI, error) {
	o := buildOptions(opts)

	raw = strings.TrimLeft(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	segs, err := o.parser.Parse(u.EscapedPath())
	if err != nil {
		return URI{}, err
	}

	out := URI{
		scheme:   u.Scheme,
		segments: segs,
		query:    u.Query(),
		fragment: u.Fragment,
		suffix:   normalizeSuffix(o.suffix),
		port:     defaultPort(u.Scheme),
	}
	if u.User != nil {
		out.username = u.User.Username()
		out.password, _ = u.User.Password()
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			out.port = n
		}
	}
	out.setHost(u.Hostname())

	return out, nil
}

// FromEnv builds the URI of the current request from its environment.
func FromEnv(env Env, opts ...Option) (URI, error) {
	o := buildOptions(opts)

	scheme := "http"
	if env.IsHTTPS() {
		scheme = "https"
	}

	out := URI{
		scheme:     scheme,
		port:       defaultPort(scheme),
		suffix:     normalizeSuffix(o.suffix),
		requestURI: env.Get(EnvRequestURI),
	}

	host := env.Get(EnvHTTPHost)
	if host == "" {
		host = env.Get(EnvServerName)
	}
	if h, p, err := net.SplitHostPort(host); err == nil {
		host = h
		if n, err := strconv.Atoi(p); err == nil {
			out.port = n
		}
	} else if p := env.Get(EnvServerPort); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			out.port = n
		}
	}
	out.setHost(host)

	if script := env.Get(EnvScriptName); script != "" {
		dir := script
		if path.Ext(script) != "" {
			dir = path.Dir(script)
		}
		out.basePath = splitPath(dir)
	}

	segs, query, err := o.parser.FromEnv(env, o.protocol)
	if err != nil {
		return URI{}, err
	}
	out.segments = segs
	out.query = query

	return out, nil
}

// Scheme returns "http" or "https".
func (u URI) Scheme() string { return u.scheme }

// Host returns the parent domain without subdomains.
func (u URI) Host() string { return u.host }

// Port returns the port, defaulting to 80 or 443 by scheme.
func (u URI) Port() int { return u.port }

// UserInfo returns "user" or "user:password", or an empty string.
func (u URI) UserInfo() string {
	if u.username == "" {
		return ""
	}
	if u.password == "" {
		return u.username
	}
	return u.username + ":" + u.password
}

// Authority returns [userinfo@]host[:port] with the port omitted when it is
// the default for the scheme.
func (u URI) Authority() string {
	var b strings.Builder
	if ui := u.UserInfo(); ui != "" {
		b.WriteString(ui)
		b.WriteByte('@')
	}
	host := u.FullHost()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	b.WriteString(host)
	if u.port != 0 && u.port != defaultPort(u.scheme) {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.port))
	}
	return b.String()
}

// FullHost returns subdomains joined with the parent domain.
func (u URI) FullHost() string {
	if len(u.subdomains) == 0 {
		return u.host
	}
	return strings.Join(u.subdomains, ".") + "." + u.host
}

// BasePath returns the application mount point without slashes.
func (u URI) BasePath() string { return strings.Join(u.basePath, "/") }

// Segments returns the routable path.
func (u URI) Segments() Segments { return u.segments }

// Query returns a copy of the query values.
func (u URI) Query() url.Values { return cloneValues(u.query) }

// Fragment returns the fragment without "#".
func (u URI) Fragment() string { return u.fragment }

// Suffix returns the URL suffix rendered by String.
func (u URI) Suffix() string { return u.suffix }

// SubDomain returns the subdomain with the given ordinal label, e.g. "3rd".
// An empty level returns the left-most subdomain.
func (u URI) SubDomain(level string) (string, bool) {
	if len(u.subdomains) == 0 {
		return "", false
	}
	if level == "" {
		return u.subdomains[0], true
	}
	for _, l := range u.SubDomains() {
		if l.Ordinal == level {
			return l.Value, true
		}
	}
	return "", false
}

// Subdomain returns the left-most subdomain or an empty string.
func (u URI) Subdomain() string {
	s, _ := u.SubDomain("")
	return s
}

// SubDomains returns the subdomains with their ordinal labels, left-most first.
func (u URI) SubDomains() []Label {
	return subdomainLabels(u.subdomains, len(u.subdomains)+1+len(u.tlds))
}

// TLD returns the TLD part with the given ordinal label. An empty level
// returns all TLD parts joined with ".".
func (u URI) TLD(level string) (string, bool) {
	if len(u.tlds) == 0 {
		return "", false
	}
	if level == "" {
		return strings.Join(u.tlds, "."), true
	}
	for _, l := range u.TLDs() {
		if l.Ordinal == level {
			return l.Value, true
		}
	}
	return "", false
}

// TLDs returns the TLD parts with their ordinal labels, left-most first.
func (u URI) TLDs() []Label { return tldLabels(u.tlds) }

// WithScheme returns a copy with the scheme changed. Only http and https are
// accepted; anything else returns u unchanged. A default port follows the
// scheme.
func (u URI) WithScheme(scheme string) URI {
	scheme = strings.ToLower(scheme)
	if scheme != "http" && scheme != "https" {
		return u
	}
	if u.port == defaultPort(u.scheme) {
		u.port = defaultPort(scheme)
	}
	u.scheme = scheme
	return u
}

// WithUserInfo returns a copy with credentials set. An empty user clears them.
func (u URI) WithUserInfo(user, password string) URI {
	u.username = user
	u.password = password
	if user == "" {
		u.password = ""
	}
	return u
}

// WithHost returns a copy with the full host replaced and decomposed again.
func (u URI) WithHost(host string) URI {
	u.setHost(host)
	return u
}

// WithPort returns a copy with the port set. Non-positive values restore the
// scheme default.
func (u URI) WithPort(port int) URI {
	if port <= 0 {
		port = defaultPort(u.scheme)
	}
	u.port = port
	return u
}

// WithPath returns a copy with the base path replaced.
func (u URI) WithPath(p string) URI {
	u.basePath = splitPath(p)
	return u
}

// AddPath returns a copy with p appended to the base path.
func (u URI) AddPath(p string) URI {
	u.basePath = slices.Concat(u.basePath, splitPath(p))
	return u
}

// WithSegments returns a copy with the routable path replaced.
func (u URI) WithSegments(segs Segments) URI {
	u.segments = segs
	return u
}

// AddSegments returns a copy with validated tokens appended to the path.
func (u URI) AddSegments(parts ...string) (URI, error) {
	segs, err := u.segments.Append(parts...)
	if err != nil {
		return URI{}, err
	}
	u.segments = segs
	return u, nil
}

// WithQuery returns a copy with the query replaced.
func (u URI) WithQuery(q url.Values) URI {
	u.query = cloneValues(q)
	return u
}

// AddQuery returns a copy with q merged into the query; keys in q replace
// existing ones.
func (u URI) AddQuery(q url.Values) URI {
	merged := cloneValues(u.query)
	for k, v := range q {
		merged[k] = slices.Clone(v)
	}
	u.query = merged
	return u
}

// WithFragment returns a copy with the fragment set.
func (u URI) WithFragment(fragment string) URI {
	u.fragment = strings.TrimPrefix(fragment, "#")
	return u
}

// WithSuffix returns a copy with the suffix set: "/" is kept as is,
// anything else is rendered as ".ext". Empty clears the suffix.
func (u URI) WithSuffix(suffix string) URI {
	u.suffix = normalizeSuffix(suffix)
	return u
}

// WithSubDomain returns a copy with a single subdomain. Empty clears it.
func (u URI) WithSubDomain(sub string) URI {
	if sub == "" {
		u.subdomains = nil
		return u
	}
	return u.WithSubDomains(strings.Split(strings.Trim(sub, "."), "."))
}

// WithSubDomains returns a copy with the subdomains replaced, left-most first.
func (u URI) WithSubDomains(subs []string) URI {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	u.subdomains = out
	return u
}

// String renders the canonical absolute URL.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.scheme)
	b.WriteString("://")
	b.WriteString(u.Authority())

	p := strings.Join(u.basePath, "/")
	if segs := u.segments.String(); segs != "" {
		if p != "" {
			p += "/"
		}
		p += segs
	}
	if p != "" {
		p = "/" + p
		if u.appliesSuffix(p) {
			p += u.suffix
		}
	}
	b.WriteString(p)

	if len(u.query) > 0 {
		if p == "" {
			b.WriteByte('/')
		}
		b.WriteByte('?')
		b.WriteString(u.query.Encode())
	}
	if u.fragment != "" {
		if p == "" && len(u.query) == 0 {
			b.WriteByte('/')
		}
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}
	return b.String()
}

func (u URI) appliesSuffix(p string) bool {
	if u.suffix == "" || len(u.query) > 0 || u.fragment != "" {
		return false
	}
	if path.Ext(u.segments.Last()) != "" {
		return false
	}
	if u.requestURI != "" && (p == u.requestURI || p+"/" == u.requestURI) {
		return false
	}
	return true
}

func (u *URI) setHost(host string) {
	parts := decomposeHost(host)
	u.host = parts.host
	u.subdomains = parts.subdomains
	u.tlds = parts.tlds
}

func normalizeSuffix(suffix string) string {
	suffix = strings.TrimSpace(suffix)
	switch {
	case suffix == "", suffix == ".":
		return ""
	case suffix == "/":
		return "/"
	default:
		return "." + strings.TrimLeft(suffix, ".")
	}
}

func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

func splitPath(p string) []string {
	var out []string
	for part := range strings.SplitSeq(p, "/") {
		if part = strings.TrimSpace(part); part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = slices.Clone(vals)
	}
	return out
}
