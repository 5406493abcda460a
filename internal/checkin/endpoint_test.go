package checkin

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint Endpoint
		want     string
	}{
		{"uuid", Endpoint{BaseURL: "https://hc.example", UUID: "abc"}, "https://hc.example/abc"},
		{"slug", Endpoint{BaseURL: "https://hc.example", PingKey: "key", Slug: "slug"}, "https://hc.example/key/slug"},
		{"uuid wins over slug", Endpoint{BaseURL: "https://hc.example", UUID: "abc", PingKey: "key", Slug: "slug"}, "https://hc.example/abc"},
		{"default base", Endpoint{UUID: "abc"}, DefaultBaseURL + "/abc"},
		{"trailing slash", Endpoint{BaseURL: "http://localhost:8000/", UUID: "abc"}, "http://localhost:8000/abc"},
		{"missing scheme", Endpoint{BaseURL: "hc.example", UUID: "abc"}, "https://hc.example/abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.endpoint.URL()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEndpointURL_MissingIdentity(t *testing.T) {
	t.Parallel()

	_, err := Endpoint{}.URL()
	require.ErrorIs(t, err, ErrMissingIdentity)

	_, err = Endpoint{Slug: "slug"}.URL()
	require.ErrorIs(t, err, ErrMissingIdentity)
	assert.Contains(t, err.Error(), "slug")

	_, err = Endpoint{PingKey: "key"}.URL()
	require.ErrorIs(t, err, ErrMissingIdentity)
}

func TestEndpointSecrets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"abc"}, Endpoint{UUID: "abc", Slug: "s"}.Secrets())
	assert.Equal(t, []string{"key"}, Endpoint{PingKey: "key", Slug: "s"}.Secrets())
	assert.Empty(t, Endpoint{}.Secrets())
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	host, err := os.Hostname()
	if err != nil || host == "" {
		assert.Equal(t, "hcrun", UserAgent(""))
		assert.Equal(t, "foo (hcrun)", UserAgent("foo"))
		return
	}
	assert.Equal(t, "hcrun - "+host, UserAgent(""))
	assert.Equal(t, "foo (hcrun - "+host+")", UserAgent("foo"))
}
