package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsm-backend/internal/auth"
)

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "pw123", hash)

	assert.True(t, auth.CheckPassword("pw123", hash))
	assert.False(t, auth.CheckPassword("wrong", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := auth.HashPassword("pw123")
	require.NoError(t, err)
	second, err := auth.HashPassword("pw123")
	require.NoError(t, err)

	// Distinct salt per call: identical passwords never share a digest.
	assert.NotEqual(t, first, second)
	assert.True(t, auth.CheckPassword("pw123", first))
	assert.True(t, auth.CheckPassword("pw123", second))
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "garbage", digest: "not-a-bcrypt-hash"},
		{name: "truncated", digest: "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Fails closed, never panics.
			assert.False(t, auth.CheckPassword("pw123", tt.digest))
		})
	}
}
