package uri

import (
	"maps"
	"net"
	"net/http"
	"strings"
)

// Server variable names understood by the parser and FromEnv.
const (
	EnvRequestURI     = "REQUEST_URI"
	EnvRequestMethod  = "REQUEST_METHOD"
	EnvQueryString    = "QUERY_STRING"
	EnvScriptName     = "SCRIPT_NAME"
	EnvPathInfo       = "PATH_INFO"
	EnvHTTPHost       = "HTTP_HOST"
	EnvServerName     = "SERVER_NAME"
	EnvServerPort     = "SERVER_PORT"
	EnvHTTPS          = "HTTPS"
	EnvForwardedProto = "HTTP_X_FORWARDED_PROTO"
	EnvAcceptLanguage = "HTTP_ACCEPT_LANGUAGE"
	EnvRequestedWith  = "HTTP_X_REQUESTED_WITH"
	EnvRemoteAddr     = "REMOTE_ADDR"
)

// Env is a request-scoped set of server variables.
// It is read-only by convention; With returns a modified copy.
type Env map[string]string

// Get returns the variable or an empty string.
func (e Env) Get(key string) string {
	return e[key]
}

// Lookup returns the variable and whether it is set.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// With returns a copy of e with key set to value.
func (e Env) With(key, value string) Env {
	out := make(Env, len(e)+1)
	maps.Copy(out, e)
	out[key] = value
	return out
}

// IsHTTPS reports whether the environment describes a TLS request.
func (e Env) IsHTTPS() bool {
	if v := strings.ToLower(e[EnvHTTPS]); v != "" && v != "off" {
		return true
	}
	return strings.EqualFold(e[EnvForwardedProto], "https")
}

// EnvFromRequest captures the server variables of an HTTP request.
// scriptName is the mount point of the application ("" when served at root).
func EnvFromRequest(r *http.Request, scriptName string) Env {
	requestURI := r.RequestURI
	if requestURI == "" && r.URL != nil {
		requestURI = r.URL.RequestURI()
	}

	env := Env{
		EnvRequestURI:     requestURI,
		EnvRequestMethod:  r.Method,
		EnvHTTPHost:       r.Host,
		EnvScriptName:     scriptName,
		EnvAcceptLanguage: r.Header.Get("Accept-Language"),
		EnvRequestedWith:  r.Header.Get("X-Requested-With"),
		EnvForwardedProto: r.Header.Get("X-Forwarded-Proto"),
		EnvRemoteAddr:     r.RemoteAddr,
	}
	if r.URL != nil {
		env[EnvQueryString] = r.URL.RawQuery
		env[EnvPathInfo] = r.URL.Path
	}

	if host, port, err := net.SplitHostPort(r.Host); err == nil {
		env[EnvServerName] = host
		env[EnvServerPort] = port
	} else {
		env[EnvServerName] = r.Host
	}

	if r.TLS != nil {
		env[EnvHTTPS] = "on"
	}

	return env
}
