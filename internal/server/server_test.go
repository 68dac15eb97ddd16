package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/widgets/internal/config"
)

func TestNew_OverridesOnlySetTimeouts(t *testing.T) {
	srv := New(config.HTTP{ListenAddr: ":9000", WriteTimeout: 30 * time.Second}, http.NotFoundHandler(), nil)
	require.Equal(t, ":9000", srv.Addr)
	require.Equal(t, 30*time.Second, srv.WriteTimeout)
	require.Equal(t, defaultRead, srv.ReadTimeout)
	require.Equal(t, defaultIdle, srv.IdleTimeout)
	require.Equal(t, defaultReadHeader, srv.ReadHeaderTimeout)
	require.Equal(t, defaultShutdown, srv.shutdown)
	require.NotNil(t, srv.ErrorLog)
}

func TestServe_GracefulShutdown(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "ok") })
	srv := New(config.HTTP{ShutdownTimeout: time.Second}, h, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	require.Equal(t, 1, logs.FilterMessage("shutting down").Len())
}

func TestRun_ListenError(t *testing.T) {
	srv := New(config.HTTP{ListenAddr: "127.0.0.1:-1"}, http.NotFoundHandler(), nil)
	require.Error(t, srv.Run(context.Background()))
}
