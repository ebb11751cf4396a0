package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"LLMBridge/internal/config"
	"LLMBridge/pkg/logger"
)

// helper function to create a production-like config for testing
func newTestConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.App.Environment = "production"
	cfg.Middleware.RateLimiter.General = config.RouteLimitConfig{Limit: 2, Window: "1m"}
	return cfg
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestNewServer_WithAddress(t *testing.T) {
	cfg := newTestConfig()
	addr := ":9999"

	srv, err := NewServer(cfg, okHandler, WithAddress(addr), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	if srv.Addr() != addr {
		t.Errorf("Expected server address to be %s, but got %s", addr, srv.Addr())
	}
}

func TestNewServer_DefaultAddressFromPort(t *testing.T) {
	cfg := newTestConfig()
	cfg.Server.Port = 4321

	srv, err := NewServer(cfg, okHandler, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.Addr() != ":4321" {
		t.Errorf("Expected :4321, got %s", srv.Addr())
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	srv, err := NewServer(newTestConfig(), okHandler, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	testServer := httptest.NewServer(srv.Handler())
	defer testServer.Close()

	// First 2 requests should pass (equal to the limit)
	for i := 0; i < 2; i++ {
		resp, err := http.Get(testServer.URL + "/api/health")
		if err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status OK on request %d, got %d", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	// The 3rd request should be rate limited
	resp, err := http.Get(testServer.URL + "/api/health")
	if err != nil {
		t.Fatalf("Request 3 failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status TooManyRequests on request 3, got %d", resp.StatusCode)
	}
}

func TestRateLimiterDisabledInDevelopment(t *testing.T) {
	cfg := newTestConfig()
	cfg.App.Environment = "development"

	srv, err := NewServer(cfg, okHandler, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 in development, got %d", i+1, rec.Code)
		}
	}
}

func TestNewServer_InvalidWindow(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.General.Window = "soon"

	if _, err := NewServer(cfg, okHandler, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected error for an invalid window")
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv, _ := NewServer(newTestConfig(), okHandler, WithLogger(logger.Nop()))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv, err := NewServer(newTestConfig(), okHandler, WithAddress("127.0.0.1:0"), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Start() returned %v after graceful shutdown", err)
	}
}
