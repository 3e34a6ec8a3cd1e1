package keygen

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrKeyExists is returned by WriteKeyPair when either file is present.
var ErrKeyExists = errors.New("key file already exists")

// KeyPair holds an ed25519 key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the OpenSSH PEM encoded private key.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateEd25519KeyPair generates a key pair from rand. A nil rand uses
// crypto/rand. The comment is appended to the public key line.
func GenerateEd25519KeyPair(rnd io.Reader, comment string) (*KeyPair, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(rnd)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
	if comment != "" {
		line += " " + comment
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  []byte(line + "\n"),
	}, nil
}

// PrivateKeyPath returns the private key path for a public key path.
func PrivateKeyPath(publicPath string) string {
	return strings.TrimSuffix(publicPath, ".pub")
}

// WriteKeyPair generates a key pair and writes it to privatePath (0600)
// and privatePath.pub (0644). Existing files are never overwritten.
func WriteKeyPair(privatePath, comment string) (*KeyPair, error) {
	publicPath := privatePath + ".pub"
	for _, p := range []string{privatePath, publicPath} {
		if _, err := os.Stat(p); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrKeyExists, p)
		}
	}

	kp, err := GenerateEd25519KeyPair(nil, comment)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(privatePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(privatePath, kp.PrivateKey, 0600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(publicPath, kp.PublicKey, 0644); err != nil {
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}
	return kp, nil
}
