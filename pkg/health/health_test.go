package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/pkg/health"
)

func ok(context.Context) error { return nil }

func fail(context.Context) error { return errors.New("connection refused") }

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()
		resp := health.Run(context.Background(), nil)
		assert.True(t, resp.Healthy())
		assert.Empty(t, resp.Checks)
	})

	t.Run("mixed results", func(t *testing.T) {
		t.Parallel()
		resp := health.Run(context.Background(), health.Checks{"cache": ok, "redis": fail})

		assert.False(t, resp.Healthy())
		assert.Equal(t, health.StatusHealthy, resp.Checks["cache"].Status)
		assert.Equal(t, health.StatusUnhealthy, resp.Checks["redis"].Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		slow := func(context.Context) error {
			time.Sleep(time.Second)
			return nil
		}
		resp := health.Run(context.Background(), health.Checks{"slow": slow}, health.WithTimeout(20*time.Millisecond))

		assert.False(t, resp.Healthy())
		assert.Contains(t, resp.Checks["slow"].Error, "timeout")
	})
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		checks   health.Checks
		accept   string
		wantCode int
		wantBody string
	}{
		{name: "healthy text", checks: health.Checks{"a": ok}, wantCode: http.StatusOK, wantBody: "OK"},
		{name: "unhealthy text", checks: health.Checks{"a": fail}, wantCode: http.StatusServiceUnavailable, wantBody: "Service Unavailable"},
		{name: "unhealthy json", checks: health.Checks{"a": fail}, accept: "application/json", wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			health.ReadinessHandler(tt.checks)(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				return
			}

			var resp health.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, health.StatusUnhealthy, resp.Status)
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live?format=json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
