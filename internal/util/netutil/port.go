// Package netutil waits for TCP services on freshly provisioned hosts.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// SSHPort is the port WaitForSSH dials.
	SSHPort = 22
	// SSHWaitTimeout bounds the wait for a new VM to accept SSH.
	SSHWaitTimeout = 5 * time.Minute
)

// ErrPortTimeout is returned when the port did not open in time.
var ErrPortTimeout = errors.New("timeout waiting for port")

// pollInterval is the delay between connection attempts.
var pollInterval = time.Second

// WaitForPort waits for a TCP port to accept connections on host. It
// tries once immediately and then every pollInterval until timeout.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	reachable := func() bool {
		dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		conn, err := d.DialContext(dialCtx, "tcp", address)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}

	if reachable() {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w %s", ErrPortTimeout, address)
			}
			return ctx.Err()
		case <-ticker.C:
			if reachable() {
				return nil
			}
		}
	}
}

// WaitForSSH waits for host to accept connections on the SSH port.
func WaitForSSH(ctx context.Context, host string) error {
	if host == "" {
		return errors.New("host has no address")
	}
	return WaitForPort(ctx, host, SSHPort, SSHWaitTimeout)
}
