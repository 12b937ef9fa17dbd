package internal

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"maps"
	"mime"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/dmitrymomot/kernel/pkg/i18n"
)

// Content types understood by Output.
const (
	MIMEJSON = "application/json"
	MIMEXML  = "application/xml"
	MIMEHTML = "text/html"
	MIMEText = "text/plain"
)

var shortTypes = map[string]string{
	"json": MIMEJSON,
	"xml":  MIMEXML,
	"html": MIMEHTML,
	"txt":  MIMEText,
	"text": MIMEText,
}

// ErrorLinesNamespace holds error titles and messages as
// "<code>.title" and "<code>.message".
const ErrorLinesNamespace = "errors"

// ErrAlreadySent is returned by a second terminal write.
var ErrAlreadySent = errors.New("output: response already sent")

// Translator resolves language lines.
type Translator interface {
	Lookup(lang, namespace, key string) (string, bool)
}

// Map is a loosely typed payload. The keys "success", "message",
// "timestamp", "metadata", "data" and "errors" are lifted into the envelope.
type Map = map[string]any

// Envelope is the structured response body for JSON and XML output.
type Envelope struct {
	Status    int    `json:"status"`
	Reason    string `json:"reason"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Result    []any  `json:"result"`
	Timestamp any    `json:"timestamp,omitempty"`
	Metadata  any    `json:"metadata,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}

// Output performs the single terminal write of a request.
// Headers are only emitted when the writer is an http.ResponseWriter, so the
// same Output serves the CLI runtime.
type Output struct {
	w        io.Writer
	rw       http.ResponseWriter
	mimeType string
	charset  string
	status   int
	reason   string
	ajaxType string
	lines    Translator
	lang     string
	sent     atomic.Bool
}

// OutputOption configures an Output.
type OutputOption func(*Output)

// WithLines sets the translator and language used for error lines.
func WithLines(t Translator, lang string) OutputOption {
	return func(o *Output) {
		o.lines = t
		o.lang = lang
	}
}

// WithAjax forces a structured content type, as requested by an XHR client.
// An empty mimeType means JSON.
func WithAjax(mimeType string) OutputOption {
	return func(o *Output) {
		if mimeType == "" {
			mimeType = MIMEJSON
		}
		o.ajaxType = mimeType
	}
}

// NewOutput creates an Output writing to w. Default content type is
// text/html for HTTP writers and text/plain otherwise.
func NewOutput(w io.Writer, opts ...OutputOption) *Output {
	o := &Output{w: w, status: http.StatusOK, mimeType: MIMEText}
	if rw, ok := w.(http.ResponseWriter); ok {
		o.rw = rw
		o.mimeType = MIMEHTML
		o.charset = "utf-8"
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetContentType accepts a MIME type or a file extension ("json", ".xml").
func (o *Output) SetContentType(mimeType string, charset ...string) *Output {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return o
	}
	if !strings.Contains(mimeType, "/") {
		ext := strings.ToLower(strings.TrimPrefix(mimeType, "."))
		if short, ok := shortTypes[ext]; ok {
			mimeType = short
		} else {
			mimeType = mime.TypeByExtension("." + ext)
		}
	}
	base, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return o
	}
	if base == "text/xml" {
		base = MIMEXML
	}
	o.mimeType = base
	o.charset = params["charset"]
	if len(charset) > 0 {
		o.charset = charset[0]
	}
	return o
}

// ContentType returns the current MIME type without parameters.
func (o *Output) ContentType() string { return o.mimeType }

// SetStatus sets the status used by Send. The reason phrase defaults to the
// standard status text.
func (o *Output) SetStatus(code int, reason ...string) *Output {
	o.status = code
	o.reason = ""
	if len(reason) > 0 {
		o.reason = reason[0]
	}
	return o
}

// Status returns the status code used by Send.
func (o *Output) Status() int { return o.status }

// Sent reports whether the terminal write happened.
func (o *Output) Sent() bool { return o.sent.Load() }

// Send writes payload with the current status and content type. A payload
// that fails to render leaves the Output unsent.
// JSON and XML wrap it in an Envelope; other content types write scalars
// as text and fall back to a JSON envelope for structured values.
func (o *Output) Send(payload any) error {
	if !o.sent.CompareAndSwap(false, true) {
		return ErrAlreadySent
	}
	if o.ajaxType != "" {
		o.SetContentType(o.ajaxType)
	}

	if o.status == http.StatusNoContent || o.status == http.StatusNotModified {
		o.writeHeader()
		return nil
	}

	body, err := o.render(payload)
	if err != nil {
		// nothing was written; the error page may still be sent
		o.sent.Store(false)
		return fmt.Errorf("output: render %s: %w", o.mimeType, err)
	}
	o.writeHeader()
	_, err = o.w.Write(body)
	return err
}

// SendError writes the error page or envelope for code. Title and message
// come from the "errors" language lines, falling back to the status text.
//
// vars may be a string, which replaces the message, or a Map, which is sent
// as the payload with the message set and also fills {{placeholders}} in
// the language lines.
func (o *Output) SendError(code int, vars ...any) error {
	var placeholders i18n.M
	var payload Map
	custom := ""

	for _, v := range vars {
		switch t := v.(type) {
		case string:
			custom = t
		case Map:
			payload = maps.Clone(t)
			placeholders = i18n.M(t)
		case i18n.M:
			payload = Map(maps.Clone(t))
			placeholders = t
		}
	}

	title := o.line(code, "title", placeholders)
	if title == "" {
		title = http.StatusText(code)
	}
	message := o.line(code, "message", placeholders)
	if custom != "" {
		message = custom
	}
	if payload == nil {
		payload = Map{}
	}
	payload["message"] = message

	o.SetStatus(code, title)

	if o.ajaxType != "" || o.mimeType == MIMEJSON || o.mimeType == MIMEXML {
		return o.Send(payload)
	}

	if !o.sent.CompareAndSwap(false, true) {
		return ErrAlreadySent
	}
	var body string
	if o.mimeType == MIMEHTML {
		body = fmt.Sprintf("<!DOCTYPE html>\n<html><head><title>%d %s</title></head><body><h1>%s</h1><p>%s</p></body></html>\n",
			code, html.EscapeString(title), html.EscapeString(title), html.EscapeString(message))
	} else {
		body = fmt.Sprintf("%d %s", code, title)
		if message != "" {
			body += ": " + message
		}
		body += "\n"
	}
	if code == http.StatusNoContent {
		o.writeHeader()
		return nil
	}
	o.writeHeader()
	_, err := io.WriteString(o.w, body)
	return err
}

func (o *Output) line(code int, kind string, placeholders i18n.M) string {
	if o.lines == nil {
		return ""
	}
	s, ok := o.lines.Lookup(o.lang, ErrorLinesNamespace, strconv.Itoa(code)+"."+kind)
	if !ok {
		return ""
	}
	return i18n.ReplacePlaceholders(s, placeholders)
}

func (o *Output) writeHeader() {
	if o.rw == nil {
		return
	}
	if o.status != http.StatusNoContent && o.mimeType != "" {
		ct := o.mimeType
		if o.charset != "" {
			ct += "; charset=" + o.charset
		}
		o.rw.Header().Set("Content-Type", ct)
	}
	o.rw.WriteHeader(o.status)
}

func (o *Output) render(payload any) ([]byte, error) {
	switch o.mimeType {
	case MIMEJSON:
		return json.MarshalIndent(o.envelope(payload), "", "    ")
	case MIMEXML:
		return encodeXML(o.envelope(payload))
	}

	switch v := payload.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		o.SetContentType(MIMEJSON)
		return v, nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	}
	if isScalar(payload) {
		return []byte(fmt.Sprint(payload)), nil
	}

	o.SetContentType(MIMEJSON)
	return json.MarshalIndent(o.envelope(payload), "", "    ")
}

func (o *Output) envelope(payload any) Envelope {
	reason := o.reason
	if reason == "" {
		reason = http.StatusText(o.status)
	}
	env := Envelope{
		Status:  o.status,
		Reason:  reason,
		Success: o.status >= 200 && o.status < 300,
		Result:  []any{},
	}

	data := payload
	if raw, ok := data.(json.RawMessage); ok {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			data = v
		}
	}

	if m, ok := asMap(data); ok {
		if v, ok := m["success"].(bool); ok {
			env.Success = v
		}
		if v, ok := m["message"]; ok {
			env.Message = fmt.Sprint(v)
		}
		env.Timestamp = m["timestamp"]
		env.Metadata = m["metadata"]
		env.Errors = m["errors"]
		for _, k := range []string{"success", "message", "timestamp", "metadata", "errors"} {
			delete(m, k)
		}

		if inner, ok := m["data"]; ok {
			data = inner
		} else if len(m) == 0 {
			return env
		} else {
			env.Result = []any{m}
			return env
		}
		if im, ok := asMap(data); ok {
			env.Result = []any{im}
			return env
		}
	}

	switch {
	case data == nil:
	case isList(data):
		rv := reflect.ValueOf(data)
		for i := range rv.Len() {
			env.Result = append(env.Result, rv.Index(i).Interface())
		}
	case data == "":
	default:
		env.Result = []any{data}
	}
	return env
}

func asMap(v any) (Map, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(Map, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func isList(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

func isScalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}

// encodeXML renders <response status reason success message> with result
// items as <item0>..<itemN> children.
func encodeXML(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "    ")

	start := xml.StartElement{
		Name: xml.Name{Local: "response"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "status"}, Value: strconv.Itoa(env.Status)},
			{Name: xml.Name{Local: "reason"}, Value: env.Reason},
			{Name: xml.Name{Local: "success"}, Value: strconv.FormatBool(env.Success)},
			{Name: xml.Name{Local: "message"}, Value: env.Message},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	for i, item := range env.Result {
		if err := writeXMLValue(enc, "item"+strconv.Itoa(i), normalizeValue(item)); err != nil {
			return nil, err
		}
	}
	if env.Errors != nil {
		if err := writeXMLValue(enc, "errors", normalizeValue(env.Errors)); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalizeValue turns structs into maps (honoring json tags) by a JSON
// round trip.
func normalizeValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

func writeXMLValue(enc *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: xmlName(name)}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	switch t := v.(type) {
	case map[string]any:
		keys := slices.Sorted(maps.Keys(t))
		for _, k := range keys {
			if err := writeXMLValue(enc, k, t[k]); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range t {
			if err := writeXMLValue(enc, "item"+strconv.Itoa(i), e); err != nil {
				return err
			}
		}
	case nil:
	default:
		if err := enc.EncodeToken(xml.CharData(fmt.Sprint(t))); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func xmlName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, s)
	if s == "" || !unicode.IsLetter(rune(s[0])) && s[0] != '_' {
		return "item" + s
	}
	return s
}
