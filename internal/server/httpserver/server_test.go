package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
}

func TestNew(t *testing.T) {
	s := New(":8080", okHandler(), WithTimeouts(5*time.Second, 10*time.Second))
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.httpServer.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", s.httpServer.ReadTimeout)
	}
	if s.httpServer.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("ReadHeaderTimeout = %v, want 5s", s.httpServer.ReadHeaderTimeout)
	}
	if s.httpServer.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", s.httpServer.WriteTimeout)
	}
	if s.TLSEnabled() {
		t.Error("TLSEnabled() = true without a TLS config")
	}
}

func TestWithTimeouts_ZeroKeepsUnset(t *testing.T) {
	s := New(":0", okHandler(), WithTimeouts(0, 0))
	if s.httpServer.ReadTimeout != 0 || s.httpServer.WriteTimeout != 0 {
		t.Errorf("timeouts = %v/%v, want unset", s.httpServer.ReadTimeout, s.httpServer.WriteTimeout)
	}
}

func serve(t *testing.T, s *Server) (string, chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(ln)
	}()
	return ln.Addr().String(), errChan
}

func shutdown(t *testing.T, s *Server, errChan chan error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Serve returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for Serve to return")
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := New("127.0.0.1:0", okHandler())
	addr, errChan := serve(t, s)

	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	shutdown(t, s, errChan)
}

func TestServer_TLS(t *testing.T) {
	// borrow a self-signed certificate and a client that trusts it
	ts := httptest.NewTLSServer(okHandler())
	defer ts.Close()
	cert := ts.TLS.Certificates[0]

	s := New("127.0.0.1:0", okHandler(), WithTLSConfig(&tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}))
	if !s.TLSEnabled() {
		t.Fatal("TLSEnabled() = false")
	}
	addr, errChan := serve(t, s)

	resp, err := ts.Client().Get("https://" + addr + "/")
	if err != nil {
		t.Fatalf("GET over TLS: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if resp.TLS == nil {
		t.Error("response was not served over TLS")
	}

	shutdown(t, s, errChan)
}

func TestServer_ListenAndServe_BadAddr(t *testing.T) {
	s := New("127.0.0.1:-1", okHandler())
	if err := s.ListenAndServe(); err == nil {
		t.Error("expected listen error for invalid port")
	}
}
