package infra

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrInvalidPublicKey is returned when the key file does not hold an
// authorized_keys line.
var ErrInvalidPublicKey = errors.New("invalid SSH public key")

// PublicKey is a parsed SSH public key.
type PublicKey struct {
	// Line is the authorized_keys line as read, trimmed.
	Line        string
	Type        string
	Fingerprint string
}

// ReadPublicKey reads and parses the public key at path. Read errors keep
// the underlying *os.PathError in the chain.
func ReadPublicKey(path string) (*PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH public key %s: %w", path, err)
	}
	return ParsePublicKey(data)
}

// ParsePublicKey parses the first authorized_keys line in data.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty key file", ErrInvalidPublicKey)
	}
	pub, _, _, rest, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	// ParseAuthorizedKey skips unparsable lines, so the key is the last
	// line before rest.
	line := strings.TrimSpace(string(data[:len(data)-len(rest)]))
	if i := strings.LastIndex(line, "\n"); i >= 0 {
		line = strings.TrimSpace(line[i+1:])
	}
	return &PublicKey{
		Line:        line,
		Type:        pub.Type(),
		Fingerprint: ssh.FingerprintSHA256(pub),
	}, nil
}
