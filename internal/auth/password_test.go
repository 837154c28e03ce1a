package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, "pw123", hash, "hash must not expose the plaintext")
	assert.True(t, CheckPasswordHash("pw123", hash))
	assert.False(t, CheckPasswordHash("wrongpw", hash))
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("same input")
	require.NoError(t, err)
	second, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
	assert.True(t, CheckPasswordHash("same input", first))
	assert.True(t, CheckPasswordHash("same input", second))
}

func TestCheckPasswordHashGarbage(t *testing.T) {
	assert.False(t, CheckPasswordHash("anything", "not-a-bcrypt-hash"))
}
