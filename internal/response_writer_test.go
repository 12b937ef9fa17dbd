package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/internal"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("write header once", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)

		require.False(t, rw.Written())
		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusOK)

		assert.True(t, rw.Written())
		assert.Equal(t, http.StatusNotFound, rw.Status())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("write implies 200", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)

		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		_, err = rw.Write([]byte(" world"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, rw.Status())
		assert.EqualValues(t, 11, rw.Size())
		assert.Equal(t, "hello world", rec.Body.String())
	})

	t.Run("hooks run once before header", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)

		var order []string
		rw.OnBeforeWrite(func() {
			order = append(order, "first")
			rw.Header().Set("X-Hook", "yes")
		})
		rw.OnBeforeWrite(func() { order = append(order, "second") })

		_, _ = rw.Write([]byte("a"))
		_, _ = rw.Write([]byte("b"))
		rw.WriteHeader(http.StatusTeapot)

		assert.Equal(t, []string{"first", "second"}, order)
		assert.Equal(t, "yes", rec.Header().Get("X-Hook"))
	})

	t.Run("flush and unwrap", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)

		rw.Flush()
		assert.True(t, rec.Flushed)
		assert.Same(t, rec, rw.Unwrap())
	})

	t.Run("hijack unsupported", func(t *testing.T) {
		t.Parallel()

		rw := internal.NewResponseWriter(httptest.NewRecorder())
		_, _, err := rw.Hijack()
		require.ErrorIs(t, err, http.ErrNotSupported)
	})
}
