package hashutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong", hash))
}

func TestHashVerifyLongPassword(t *testing.T) {
	long := strings.Repeat("a", 100)
	require.True(t, Truncated(long))

	hash, err := Hash(long)
	require.NoError(t, err)
	assert.True(t, Verify(long, hash))

	// Passwords sharing the first 72 bytes collide.
	longer := strings.Repeat("a", 72) + "something else"
	assert.True(t, Verify(longer, hash))
}

func TestHashVerifyMultibyteBoundary(t *testing.T) {
	pw := strings.Repeat("é", 40) // 80 bytes
	hash, err := Hash(pw)
	require.NoError(t, err)
	assert.True(t, Verify(pw, hash))
}

func TestVerifyMalformedHash(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, Verify("anything", "$2a$10$short"))
}
