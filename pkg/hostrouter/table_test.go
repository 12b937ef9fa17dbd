package hostrouter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kernel/pkg/hostrouter"
)

func TestTable_Match(t *testing.T) {
	t.Parallel()

	table := hostrouter.NewTable[string]()
	table.Add("api.example.com", "api")
	table.Add("*.example.com", "tenant")
	table.Add("  ", "ignored")
	require.Equal(t, 2, table.Len())

	tests := []struct {
		host   string
		want   string
		wantOK bool
	}{
		{"api.example.com", "api", true},
		{"API.example.com:8443", "api", true},
		{"acme.example.com", "tenant", true},
		{"deep.acme.example.com", "", false},
		{"example.com", "", false},
		{"other.org", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			got, ok := table.Match(tt.host)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchHost(t *testing.T) {
	t.Parallel()

	assert.True(t, hostrouter.MatchHost("*.example.com", "shop.example.com"))
	assert.True(t, hostrouter.MatchHost("example.com", "EXAMPLE.com:80"))
	assert.False(t, hostrouter.MatchHost("*.example.com", "example.com"))
	assert.False(t, hostrouter.MatchHost("", "example.com"))
}

func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", hostrouter.NormalizeHost("Example.COM:8080"))
	assert.Equal(t, "[::1]", hostrouter.NormalizeHost("[::1]:8080"))
	assert.Equal(t, "[::1]", hostrouter.NormalizeHost("[::1]"))
}
