package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher("server-secret")
	require.NoError(t, err)

	encrypted, err := c.Encrypt("shpat_0123456789abcdef")
	require.NoError(t, err)
	assert.NotEqual(t, "shpat_0123456789abcdef", encrypted)

	decrypted, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "shpat_0123456789abcdef", decrypted)
}

func TestTokenCipher_UniqueCiphertexts(t *testing.T) {
	c, err := NewTokenCipher("server-secret")
	require.NoError(t, err)

	first, err := c.Encrypt("token")
	require.NoError(t, err)
	second, err := c.Encrypt("token")
	require.NoError(t, err)
	// соль и nonce случайны на каждое шифрование
	assert.NotEqual(t, first, second)
}

func TestTokenCipher_WrongSecret(t *testing.T) {
	c, err := NewTokenCipher("server-secret")
	require.NoError(t, err)
	encrypted, err := c.Encrypt("token")
	require.NoError(t, err)

	other, err := NewTokenCipher("another-secret")
	require.NoError(t, err)
	_, err = other.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestTokenCipher_Invalid(t *testing.T) {
	c, err := NewTokenCipher("server-secret")
	require.NoError(t, err)

	_, err = c.Decrypt("not base64!!!")
	assert.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=")
	assert.Error(t, err)

	_, err = NewTokenCipher("")
	assert.Error(t, err)
}
