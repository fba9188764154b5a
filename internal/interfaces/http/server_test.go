package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cdforge/internal/config"
)

func TestNewServer(t *testing.T) {
	mux := http.NewServeMux()
	server := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 5000, ReadTimeout: time.Minute}, mux, nil)

	require.NotNil(t, server)
	assert.Equal(t, "127.0.0.1:5000", server.Addr())
	assert.Equal(t, time.Minute, server.srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, server.shutdownTimeout)
	assert.Equal(t, http.Handler(mux), server.Handler())
}

func TestServer_ServeAndStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })
	server := NewServer(config.ServerConfig{Host: "127.0.0.1", ShutdownTimeout: time.Second}, mux, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, server.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer(config.ServerConfig{Port: 0}, http.NewServeMux(), nil)
	assert.NoError(t, server.Stop(context.Background()))
}

//Personal.AI order the ending
