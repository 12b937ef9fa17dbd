package router

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Target is what a matched Action dispatches to. It is one of Literal,
// Redirect, ControllerMethod, StatusCode or Empty.
type Target interface {
	fmt.Stringer
	isTarget()
}

// Literal is sent as the response payload without binding a controller.
type Literal struct {
	Payload     any
	ContentType string
}

// Redirect re-dispatches internally to Segments followed by the captured
// values of the matched Action.
type Redirect struct {
	Segments []string
}

// ControllerMethod binds a registered controller. An empty Method binds
// "index" (or "route"), which receives every captured value.
type ControllerMethod struct {
	Controller string
	Method     string
}

// StatusCode short-circuits with an HTTP status.
type StatusCode struct {
	Code int
}

// Empty matches and responds with 204 No Content.
type Empty struct{}

func (Literal) isTarget()          {}
func (Redirect) isTarget()         {}
func (ControllerMethod) isTarget() {}
func (StatusCode) isTarget()       {}
func (Empty) isTarget()            {}

func (t Literal) String() string {
	switch p := t.Payload.(type) {
	case string:
		return "literal:" + p
	case json.RawMessage:
		return "literal:" + string(p)
	default:
		return fmt.Sprintf("literal:%T", p)
	}
}

func (t Redirect) String() string { return "redirect:/" + strings.Join(t.Segments, "/") }

func (t ControllerMethod) String() string {
	if t.Method == "" {
		return t.Controller
	}
	return t.Controller + "@" + t.Method
}

func (t StatusCode) String() string { return "status:" + strconv.Itoa(t.Code) }

func (Empty) String() string { return "empty" }

var (
	controllerRef = regexp.MustCompile(`^([A-Za-z0-9_\\/]+)@([A-Za-z_][A-Za-z0-9_]*)$`)
	controllerID  = regexp.MustCompile(`^(?:[A-Za-z0-9_\-]+[\\/])*[A-Z][A-Za-z0-9_]*$`)
	statusCode    = regexp.MustCompile(`^[1-5][0-9]{2}$`)
)

// ParseTarget resolves a target written as a string, as found in
// configuration files:
//
//	""                      Empty
//	"404"                   StatusCode
//	"Users@show"            ControllerMethod
//	"app/controllers/Users" ControllerMethod without method
//	"/users/list"           Redirect
//	`{"ok":true}`           Literal (application/json)
//	anything else           Literal (text/plain)
func ParseTarget(raw string) (Target, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return Empty{}, nil
	case statusCode.MatchString(s):
		code, _ := strconv.Atoi(s)
		return StatusCode{Code: code}, nil
	case controllerRef.MatchString(s):
		m := controllerRef.FindStringSubmatch(s)
		return ControllerMethod{Controller: normalizeControllerID(m[1]), Method: m[2]}, nil
	case controllerID.MatchString(s):
		return ControllerMethod{Controller: normalizeControllerID(s)}, nil
	case strings.HasPrefix(s, "/"):
		segs := splitPattern(s)
		if len(segs) == 0 {
			return nil, fmt.Errorf("%w: empty redirect %q", ErrInvalidTarget, raw)
		}
		return Redirect{Segments: segs}, nil
	case (strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")) && json.Valid([]byte(s)):
		return Literal{Payload: json.RawMessage(s), ContentType: "application/json"}, nil
	default:
		return Literal{Payload: raw, ContentType: "text/plain; charset=utf-8"}, nil
	}
}

func normalizeControllerID(id string) string {
	return strings.Trim(strings.ReplaceAll(id, `\`, "/"), "/")
}

func validateTarget(t Target) (Target, error) {
	switch v := t.(type) {
	case nil:
		return Empty{}, nil
	case Redirect:
		if len(v.Segments) == 0 {
			return nil, fmt.Errorf("%w: empty redirect", ErrInvalidTarget)
		}
	case ControllerMethod:
		if v.Controller == "" {
			return nil, fmt.Errorf("%w: missing controller", ErrInvalidTarget)
		}
		v.Controller = normalizeControllerID(v.Controller)
		return v, nil
	case StatusCode:
		if v.Code < 100 || v.Code > 599 {
			return nil, fmt.Errorf("%w: status %d", ErrInvalidTarget, v.Code)
		}
	}
	return t, nil
}
