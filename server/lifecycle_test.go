package server

import (
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// freePort reserves an ephemeral port and releases it for the server to bind
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestStartServesAndStops(t *testing.T) {
	s := newTestServer(t)
	port := freePort(t)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(port) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "listener never became reachable")

	require.NoError(t, s.Stop())

	select {
	case err := <-errCh:
		require.NoError(t, err, "graceful shutdown must not surface as a listener error")
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not exit after shutdown")
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Stop())
}
