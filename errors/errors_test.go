package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrResolution, "artifact ART-201")
	wrapped := Wrap(err, "unit Sample001")

	assert.True(t, Is(wrapped, ErrResolution))
	assert.Contains(t, wrapped.Error(), "Sample001")
	assert.Contains(t, wrapped.Error(), "ART-201")
}

func TestTaxonomySentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrArchive, ErrResolution, ErrUpload, ErrParse, ErrNotFound, ErrUnauthorized}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "sentinel %v should not match %v", a, b)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(New("something else")))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(Wrap(ErrNotFound, "sample SAM-42")))
	assert.True(t, IsNotFound(WrapNotFound(New("project PRJ-1 absent"), "resolving owner")))
}

func TestIsResolutionDistinctFromNotFound(t *testing.T) {
	resolution := Wrap(ErrResolution, "server returned 500")
	notFound := Wrap(ErrNotFound, "no such artifact")

	assert.True(t, IsResolution(resolution))
	assert.False(t, IsResolution(notFound))
	assert.False(t, IsNotFound(resolution))
}

func TestNewParseError(t *testing.T) {
	err := NewParseError("artifact", "name")
	require.NotNil(t, err)
	assert.True(t, Is(err, ErrParse))
	assert.Contains(t, err.Error(), "artifact record missing name")
}
