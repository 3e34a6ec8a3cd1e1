// Package keygen generates ed25519 key pairs for SSH authentication.
//
// The private key is written in OpenSSH PEM format and the public key in
// authorized_keys format, next to each other as <path> and <path>.pub.
package keygen
