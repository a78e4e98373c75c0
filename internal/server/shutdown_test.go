package server

import (
	"context"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func TestServer_Shutdown(t *testing.T) {
	srv := newTestServer(testConfig(), &stubFetcher{})

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServeWithShutdown()
	}()

	<-srv.Ready()

	// Programmatic shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	if err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}

	// Wait for server goroutine to complete
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServeWithShutdown() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Server did not shut down in time")
	}
}

func TestServer_ShutdownOnSignal(t *testing.T) {
	srv := newTestServer(testConfig(), &stubFetcher{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServeWithShutdown()
	}()

	<-srv.Ready()

	// Send SIGINT to trigger shutdown
	syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServeWithShutdown() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("Server did not respond to signal in time")
	}
}

func TestServer_Addr(t *testing.T) {
	srv := newTestServer(testConfig(), &stubFetcher{})

	// Before starting, Addr should be empty
	if addr := srv.Addr(); addr != "" {
		t.Errorf("Addr() before start = %q, want empty", addr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServeWithShutdown()
	}()

	<-srv.Ready()

	addr := srv.Addr()
	if addr == "" {
		t.Fatal("Addr() after start = empty, want non-empty")
	}

	// The server answers over a real connection.
	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	<-errCh
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := newTestServer(testConfig(), &stubFetcher{})

	// Shutdown before starting should not error
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	if err != nil {
		t.Errorf("Shutdown() before start error = %v, want nil", err)
	}
}
