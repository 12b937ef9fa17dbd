package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/kernel/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips script injection", `<p>Hello</p><script>alert('xss')</script>`, "Hello"},
		{"strips all tags", `<p>Hello <strong>world</strong></p>`, "Hello world"},
		{"strips event handlers", `<img src="x" onerror="alert('xss')">`, ""},
		{"plain text untouched", "users", "users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"clean token", "users", "users"},
		{"tag removed", "<b>users</b>", "users"},
		{"script removed", "<script>x</script>42", "42"},
		{"quotes dropped", `say"hi'`, "sayhi"},
		{"query marker dropped", "a?b", "ab"},
		{"ampersand kept as text", "a&b", "a&b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.Segment(tt.input))
		})
	}
}
