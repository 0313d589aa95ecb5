package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.Contains(t, string(hash), "$argon2id$")

	match, err := VerifyPassword("admin123", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("secret")
	require.NoError(t, err)
	second, err := HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "plaintext", "$argon2id$v=19$broken"} {
		match, err := VerifyPassword("secret", []byte(bad))
		assert.Error(t, err)
		assert.False(t, match)
	}
}
