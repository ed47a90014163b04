package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := EncryptSecret("my-api-secret", "correct horse battery staple")
	require.NoError(t, err)

	got, err := DecryptSecret(blob, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, "my-api-secret", got)
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := EncryptSecret("my-api-secret", "right")
	require.NoError(t, err)

	_, err = DecryptSecret(blob, "wrong")
	require.Error(t, err)
}

func TestEncryptValidation(t *testing.T) {
	_, err := EncryptSecret("", "pw")
	require.Error(t, err)

	_, err = EncryptSecret("secret", "")
	require.Error(t, err)
}

func TestEncryptUniqueSaltAndNonce(t *testing.T) {
	a, err := EncryptSecret("same", "same")
	require.NoError(t, err)
	b, err := EncryptSecret("same", "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLoadSecret(t *testing.T) {
	t.Run("raw takes precedence", func(t *testing.T) {
		got, err := LoadSecret(SecretConfig{RawSecret: "plain", EncryptedPath: "/nonexistent"})
		require.NoError(t, err)
		assert.Equal(t, "plain", got)
	})

	t.Run("from encrypted file", func(t *testing.T) {
		blob, err := EncryptSecret("file-secret", "pw")
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "secret.enc.json")
		require.NoError(t, os.WriteFile(path, blob, 0o600))

		got, err := LoadSecret(SecretConfig{EncryptedPath: path, Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "file-secret", got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSecret(SecretConfig{EncryptedPath: "/nonexistent", Password: "pw"})
		require.Error(t, err)
	})

	t.Run("nothing configured", func(t *testing.T) {
		got, err := LoadSecret(SecretConfig{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
