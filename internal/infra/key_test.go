package infra

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey            = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAICIFFlpBlGNE9tJuDpWpPM95kTf0i7fvraQ/udS+otRk dev@example.com"
	testKeyFingerprint = "SHA256:z6gxzC1UbHx6BGXMkjH6xVIxMBJmuW4buj6mphwFp4M"
)

func writeKey(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_ed25519.pub")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadPublicKey(t *testing.T) {
	t.Parallel()

	key, err := ReadPublicKey(writeKey(t, "  "+testKey+"\n\n"))
	require.NoError(t, err)

	assert.Equal(t, testKey, key.Line)
	assert.Equal(t, "ssh-ed25519", key.Type)
	assert.Equal(t, testKeyFingerprint, key.Fingerprint)
}

func TestReadPublicKey_FirstLineOnly(t *testing.T) {
	t.Parallel()

	key, err := ReadPublicKey(writeKey(t, testKey+"\nssh-rsa second-line\n"))
	require.NoError(t, err)
	assert.Equal(t, testKey, key.Line)
}

func TestReadPublicKey_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.pub")
	_, err := ReadPublicKey(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var pathErr *fs.PathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, path, pathErr.Path)
}

func TestReadPublicKey_Invalid(t *testing.T) {
	t.Parallel()

	for name, content := range map[string]string{
		"empty":   "\n",
		"garbage": "not a key at all",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadPublicKey(writeKey(t, content))
			assert.ErrorIs(t, err, ErrInvalidPublicKey)
		})
	}
}
