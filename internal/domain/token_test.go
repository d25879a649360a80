package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken_Uniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		token, err := NewOpaqueToken()
		require.NoError(t, err)

		_, dup := seen[token]
		require.False(t, dup, "token generated twice: %s", token)
		seen[token] = struct{}{}
	}
}

func TestNewOpaqueToken_Entropy(t *testing.T) {
	token, err := NewOpaqueToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err, "token must be URL-safe base64")
	assert.GreaterOrEqual(t, len(raw)*8, 128, "token must carry at least 128 bits of entropy")
}
