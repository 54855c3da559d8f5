package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestNewCorrectionID(t *testing.T) {
	id, err := NewCorrectionID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "correction-"))
	assert.True(t, HasPrefix(id, PrefixCorrection))
	assert.False(t, HasPrefix(id, PrefixRequest))
}

func TestHasPrefix(t *testing.T) {
	assert.False(t, HasPrefix("correction-short", PrefixCorrection))
	assert.False(t, HasPrefix("V1StGXR8_Z5jdHi6B-myT", PrefixCorrection))
	assert.True(t, HasPrefix("correction-V1StGXR8_Z5jdHi6B-myT", PrefixCorrection))
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixRequest)
		assert.True(t, HasPrefix(id, PrefixRequest))
	})
}
