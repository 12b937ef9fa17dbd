package internal_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/pkg/i18n"
)

func decodeEnvelope(t *testing.T, body []byte) internal.Envelope {
	t.Helper()

	var env internal.Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestOutput_Send(t *testing.T) {
	t.Parallel()

	t.Run("html default for http writers", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec)

		require.NoError(t, out.Send("<p>hi</p>"))
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<p>hi</p>", rec.Body.String())
	})

	t.Run("text default for plain writers", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		out := internal.NewOutput(&buf)

		require.NoError(t, out.Send(42))
		assert.Equal(t, internal.MIMEText, out.ContentType())
		assert.Equal(t, "42", buf.String())
	})

	t.Run("json envelope", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec).SetContentType("json")

		require.NoError(t, out.Send([]string{"a", "b"}))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, http.StatusOK, env.Status)
		assert.Equal(t, "OK", env.Reason)
		assert.True(t, env.Success)
		assert.Equal(t, []any{"a", "b"}, env.Result)
	})

	t.Run("envelope keys are lifted", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec).SetContentType(internal.MIMEJSON)

		require.NoError(t, out.Send(internal.Map{
			"success": false,
			"message": "partial",
			"data":    internal.Map{"id": "42"},
		}))

		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.False(t, env.Success)
		assert.Equal(t, "partial", env.Message)
		assert.Equal(t, []any{map[string]any{"id": "42"}}, env.Result)
	})

	t.Run("xml envelope", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec).SetContentType("text/xml")

		require.NoError(t, out.Send(internal.Map{"name": "Ada"}))
		assert.Equal(t, internal.MIMEXML, out.ContentType())

		body := rec.Body.String()
		assert.Contains(t, body, `<response status="200" reason="OK" success="true" message="">`)
		assert.Contains(t, body, "<item0>")
		assert.Contains(t, body, "<name>Ada</name>")
	})

	t.Run("structured value under html falls back to json", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec)

		require.NoError(t, out.Send(internal.Map{"id": 1}))
		assert.Equal(t, internal.MIMEJSON, out.ContentType())
		assert.True(t, decodeEnvelope(t, rec.Body.Bytes()).Success)
	})

	t.Run("no content writes no body", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec).SetStatus(http.StatusNoContent)

		require.NoError(t, out.Send("ignored"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("second send fails", func(t *testing.T) {
		t.Parallel()

		out := internal.NewOutput(httptest.NewRecorder())
		require.NoError(t, out.Send("one"))
		require.True(t, out.Sent())
		require.ErrorIs(t, out.Send("two"), internal.ErrAlreadySent)
		require.ErrorIs(t, out.SendError(http.StatusNotFound), internal.ErrAlreadySent)
	})

	t.Run("render failure leaves output unsent", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec).SetContentType(internal.MIMEJSON)

		require.Error(t, out.Send(internal.Map{"ch": make(chan int)}))
		assert.False(t, out.Sent())
		assert.Zero(t, rec.Body.Len())

		require.NoError(t, out.SendError(http.StatusInternalServerError))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, http.StatusInternalServerError, decodeEnvelope(t, rec.Body.Bytes()).Status)
	})

	t.Run("ajax forces json", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec, internal.WithAjax(""))

		require.NoError(t, out.Send("ok"))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("custom status reason", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec).SetContentType("json").SetStatus(http.StatusAccepted, "Queued")

		require.NoError(t, out.Send(nil))
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "Queued", env.Reason)
		assert.Empty(t, env.Result)
	})
}

func TestOutput_SendError(t *testing.T) {
	t.Parallel()

	lines, err := i18n.New(
		i18n.WithLanguages("en", "fr"),
		i18n.WithTranslations("en", internal.ErrorLinesNamespace, map[string]any{
			"404": map[string]any{
				"title":   "Page missing",
				"message": "Nothing at {{path}}",
			},
		}),
		i18n.WithTranslations("fr", internal.ErrorLinesNamespace, map[string]any{
			"404": map[string]any{"title": "Introuvable"},
		}),
	)
	require.NoError(t, err)

	t.Run("html page with translated lines", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec, internal.WithLines(lines, "en"))

		require.NoError(t, out.SendError(http.StatusNotFound, internal.Map{"path": "/x"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1>Page missing</h1>")
		assert.Contains(t, rec.Body.String(), "Nothing at /x")
	})

	t.Run("json envelope", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		out := internal.NewOutput(rec, internal.WithLines(lines, "fr")).SetContentType("json")

		require.NoError(t, out.SendError(http.StatusNotFound))
		env := decodeEnvelope(t, rec.Body.Bytes())
		assert.Equal(t, http.StatusNotFound, env.Status)
		assert.Equal(t, "Introuvable", env.Reason)
		assert.False(t, env.Success)
	})

	t.Run("string overrides message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		out := internal.NewOutput(&buf)

		require.NoError(t, out.SendError(http.StatusForbidden, "members only"))
		assert.Equal(t, "403 Forbidden: members only\n", buf.String())
	})

	t.Run("status text without lines", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		out := internal.NewOutput(&buf)

		require.NoError(t, out.SendError(http.StatusMethodNotAllowed))
		assert.Equal(t, "405 Method Not Allowed\n", buf.String())
	})
}
