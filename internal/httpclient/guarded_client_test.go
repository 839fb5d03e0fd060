package httpclient

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestValidateURLSchemes(t *testing.T) {
	c := New(10*time.Second, Options{})

	assert.NoError(t, c.ValidateURL(mustParse(t, "https://lims.example.org/api/v2/steps/24-100")))
	assert.NoError(t, c.ValidateURL(mustParse(t, "http://lims.internal/api")))
	assert.Error(t, c.ValidateURL(mustParse(t, "ftp://lims.example.org/file")))
	assert.Error(t, c.ValidateURL(mustParse(t, "file:///etc/passwd")))
}

func TestValidateURLMissingHost(t *testing.T) {
	c := New(10*time.Second, Options{})
	assert.Error(t, c.ValidateURL(mustParse(t, "https:///path-only")))
}

func TestPrivateIPAllowedByDefault(t *testing.T) {
	// LIMS servers commonly sit on RFC1918 space; blocking must be opt-in
	c := New(10*time.Second, Options{})
	assert.NoError(t, c.ValidateURL(mustParse(t, "https://10.0.12.5/api/v2")))
	assert.NoError(t, c.ValidateURL(mustParse(t, "http://localhost:8080/api/v2")))
}

func TestPrivateIPBlockingOptIn(t *testing.T) {
	block := true
	c := New(10*time.Second, Options{BlockPrivateIP: &block})

	assert.Error(t, c.ValidateURL(mustParse(t, "https://10.0.12.5/api/v2")))
	assert.Error(t, c.ValidateURL(mustParse(t, "https://192.168.1.20/api/v2")))
	assert.Error(t, c.ValidateURL(mustParse(t, "http://localhost/api/v2")))
	assert.NoError(t, c.ValidateURL(mustParse(t, "https://lims.example.org/api/v2")))
}

func TestCustomSchemes(t *testing.T) {
	c := New(10*time.Second, Options{AllowedSchemes: []string{"https"}})
	assert.Error(t, c.ValidateURL(mustParse(t, "http://lims.example.org/api")))
	assert.NoError(t, c.ValidateURL(mustParse(t, "https://lims.example.org/api")))
}
