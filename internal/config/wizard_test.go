package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardResult_ToStack(t *testing.T) {
	r := NewWizardResult()
	r.SSHPublicKeyPath = "/keys/id.pub"

	cfg := r.ToStack()
	assert.Equal(t, DefaultStackName, cfg.Name)
	assert.Equal(t, DefaultZone, cfg.Zone)
	assert.Equal(t, BackendFile, cfg.State.Backend)
	assert.Equal(t, DefaultStatePath, cfg.State.Path)
	assert.Empty(t, cfg.State.S3.Bucket)
	require.NoError(t, cfg.Validate())
}

func TestWizardResult_ToStackS3(t *testing.T) {
	r := NewWizardResult()
	r.SSHPublicKeyPath = "/keys/id.pub"
	r.StateBackend = BackendS3
	r.StateBucket = "devinfo-state"
	r.StateEndpoint = "https://fsn1.example.com"

	cfg := r.ToStack()
	assert.Empty(t, cfg.State.Path)
	assert.Equal(t, S3Config{Bucket: "devinfo-state", Endpoint: "https://fsn1.example.com", Region: defaultS3Region}, cfg.State.S3)
	require.NoError(t, cfg.Validate())
}

func TestWizardResult_WrittenConfigLoads(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "id.pub")
	require.NoError(t, os.WriteFile(key, []byte("ssh-ed25519 AAAA test"), 0600))

	r := NewWizardResult()
	r.SSHPublicKeyPath = key
	r.Zone = "hel1"

	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, WriteStack(r.ToStack(), path))

	cfg, err := LoadStack(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "hel1", cfg.Zone)
	assert.Equal(t, key, cfg.SSHPublicKeyPath)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"dev", false},
		{"my-stack-1", false},
		{"", true},
		{"Dev", true},
		{"-dev", true},
		{"dev-", true},
		{"dev_1", true},
		{string(make([]byte, 64)), true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validateName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateKeyPath(t *testing.T) {
	key := filepath.Join(t.TempDir(), "id.pub")
	require.NoError(t, os.WriteFile(key, []byte("x"), 0600))

	assert.ErrorIs(t, validateKeyPath("  "), ErrKeyPathRequired)
	assert.NoError(t, validateKeyPath(key))
	assert.ErrorIs(t, validateKeyPath(key+".missing"), os.ErrNotExist)
}

func TestValidateNewKeyPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "id.pub")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0600))

	assert.ErrorIs(t, validateNewKeyPath(""), ErrKeyPathRequired)
	assert.Error(t, validateNewKeyPath(filepath.Join(dir, "id")), "needs .pub suffix")
	assert.Error(t, validateNewKeyPath(existing))
	assert.NoError(t, validateNewKeyPath(filepath.Join(dir, "new.pub")))
}
