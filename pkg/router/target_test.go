package router_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/pkg/router"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want router.Target
	}{
		{"", router.Empty{}},
		{"  ", router.Empty{}},
		{"404", router.StatusCode{Code: 404}},
		{"Users@show", router.ControllerMethod{Controller: "Users", Method: "show"}},
		{`App\Controllers\Users@show`, router.ControllerMethod{Controller: "App/Controllers/Users", Method: "show"}},
		{"app/controllers/Users", router.ControllerMethod{Controller: "app/controllers/Users"}},
		{"/users/list", router.Redirect{Segments: []string{"users", "list"}}},
		{`{"ok":true}`, router.Literal{Payload: json.RawMessage(`{"ok":true}`), ContentType: "application/json"}},
		{`[1,2]`, router.Literal{Payload: json.RawMessage(`[1,2]`), ContentType: "application/json"}},
		{"{not json", router.Literal{Payload: "{not json", ContentType: "text/plain; charset=utf-8"}},
		{"hello world", router.Literal{Payload: "hello world", ContentType: "text/plain; charset=utf-8"}},
		{"1234", router.Literal{Payload: "1234", ContentType: "text/plain; charset=utf-8"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			got, err := router.ParseTarget(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := router.ParseTarget("/")
	require.ErrorIs(t, err, router.ErrInvalidTarget)
}

func TestTarget_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Users@show", router.ControllerMethod{Controller: "Users", Method: "show"}.String())
	assert.Equal(t, "Users", router.ControllerMethod{Controller: "Users"}.String())
	assert.Equal(t, "redirect:/a/b", router.Redirect{Segments: []string{"a", "b"}}.String())
	assert.Equal(t, "status:418", router.StatusCode{Code: 418}.String())
	assert.Equal(t, "literal:pong", router.Literal{Payload: "pong"}.String())
	assert.Equal(t, "literal:map[string]int", router.Literal{Payload: map[string]int{}}.String())
	assert.Equal(t, "empty", router.Empty{}.String())
}
