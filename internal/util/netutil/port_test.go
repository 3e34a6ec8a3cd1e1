package netutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort returns a port on 127.0.0.1 that nothing listens on.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestWaitForPort_Open(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	assert.NoError(t, WaitForPort(context.Background(), "127.0.0.1", port, 2*time.Second))
}

func TestWaitForPort_Timeout(t *testing.T) {
	port := freePort(t)
	timeout := 200 * time.Millisecond

	start := time.Now()
	err := WaitForPort(context.Background(), "127.0.0.1", port, timeout)

	require.ErrorIs(t, err, ErrPortTimeout)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
}

func TestWaitForPort_Canceled(t *testing.T) {
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitForPort(ctx, "127.0.0.1", port, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitForPort_DelayedStart(t *testing.T) {
	orig := pollInterval
	pollInterval = 50 * time.Millisecond
	defer func() { pollInterval = orig }()

	port := freePort(t)
	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	go func() {
		time.Sleep(200 * time.Millisecond)
		ln, err := net.Listen("tcp", address)
		if err != nil {
			return
		}
		time.Sleep(time.Second)
		ln.Close()
	}()

	assert.NoError(t, WaitForPort(context.Background(), "127.0.0.1", port, 3*time.Second))
}

func TestWaitForSSH_NoHost(t *testing.T) {
	assert.Error(t, WaitForSSH(context.Background(), ""))
}
