package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong password", hash))
}

func TestHashToken(t *testing.T) {
	first := HashToken("refresh-token-value")
	second := HashToken("refresh-token-value")
	other := HashToken("different-value")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64) // hex-encoded SHA256
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("12345678"))
	assert.False(t, ValidatePassword("1234567"))
	assert.False(t, ValidatePassword(""))
}
