package uri

import (
	"net/url"
	"path"
	"strings"
)

// Protocol names the server variable the path is read from.
// Any variable name is accepted; the constants cover the usual ones.
type Protocol string

const (
	ProtocolAuto        Protocol = "AUTO"
	ProtocolRequestURI  Protocol = EnvRequestURI
	ProtocolQueryString Protocol = EnvQueryString
	ProtocolPathInfo    Protocol = EnvPathInfo
)

// SegmentsStringKey is the query parameter that overrides the request path.
const SegmentsStringKey = "SEGMENTS_STRING"

// FromEnv resolves the path and query from the request environment and
// parses the path into Segments.
func (p *Parser) FromEnv(env Env, protocol Protocol) (Segments, url.Values, error) {
	rawPath, query := resolveSource(env, protocol)
	segs, err := p.Parse(rawPath)
	if err != nil {
		return Segments{}, nil, err
	}
	return segs, query, nil
}

func resolveSource(env Env, protocol Protocol) (string, url.Values) {
	switch protocol {
	case "", ProtocolAuto, ProtocolRequestURI:
		return fromRequestURI(env)
	case ProtocolQueryString:
		return fromQueryString(env)
	}

	if v, ok := env.Lookup(string(protocol)); ok {
		query, _ := url.ParseQuery(env.Get(EnvQueryString))
		return v, query
	}
	return fromRequestURI(env)
}

func fromRequestURI(env Env) (string, url.Values) {
	requestURI := env.Get(EnvRequestURI)
	if requestURI == "" {
		query, _ := url.ParseQuery(env.Get(EnvQueryString))
		return "", query
	}

	rawPath, rawQuery, _ := strings.Cut(requestURI, "?")
	if u, err := url.Parse(rawPath); err == nil && u.Host != "" {
		// absolute-form request target
		rawPath = u.EscapedPath()
	}

	if script := env.Get(EnvScriptName); script != "" {
		if hasPathPrefix(rawPath, script) {
			rawPath = rawPath[len(script):]
		} else if dir := path.Dir(script); dir != "/" && dir != "." && hasPathPrefix(rawPath, dir) {
			rawPath = rawPath[len(dir):]
		}
	}

	// nginx: "/?/users/42" puts the path into the query string
	if strings.Trim(rawPath, "/") == "" && strings.HasPrefix(rawQuery, "/") {
		rawPath, rawQuery, _ = strings.Cut(rawQuery, "?")
	}

	query, _ := url.ParseQuery(rawQuery)
	if override, ok := query[SegmentsStringKey]; ok {
		if len(override) > 0 {
			rawPath = override[0]
		}
		query.Del(SegmentsStringKey)
	}

	return rawPath, query
}

func fromQueryString(env Env) (string, url.Values) {
	qs := env.Get(EnvQueryString)
	if strings.Trim(qs, "/") == "" {
		return "", url.Values{}
	}
	if !strings.HasPrefix(qs, "/") {
		query, _ := url.ParseQuery(qs)
		return "", query
	}

	rawPath, rawQuery, _ := strings.Cut(qs, "?")
	query, _ := url.ParseQuery(rawQuery)
	return rawPath, query
}

func hasPathPrefix(p, prefix string) bool {
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	return len(p) == len(prefix) || p[len(prefix)] == '/' || p[len(prefix)] == '?' || strings.HasSuffix(prefix, "/")
}
