package httpmiddleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"LLMBridge/pkg/ratelimiter"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitByKey(t *testing.T) {
	factory, _ := ratelimiter.NewFactory(ratelimiter.AlgorithmFixedWindow, 1, time.Minute, 0)
	h := RateLimitByKey(ratelimiter.NewKeyed(factory, time.Minute, 0), RemoteIP, "/api")(okHandler)

	do := func(path, addr string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("/api/health", "1.1.1.1:1000"); code != http.StatusOK {
		t.Fatalf("first request: got %d", code)
	}
	if code := do("/api/health", "1.1.1.1:2000"); code != http.StatusTooManyRequests {
		t.Errorf("same IP, different port should share a budget: got %d", code)
	}
	if code := do("/api/health", "2.2.2.2:1000"); code != http.StatusOK {
		t.Errorf("other IP: got %d", code)
	}
	if code := do("/static/app.js", "1.1.1.1:1000"); code != http.StatusOK {
		t.Errorf("paths outside the prefix are not limited: got %d", code)
	}
}

func TestForwardedFor(t *testing.T) {
	key, err := ForwardedFor([]string{"10.0.0.0/8", "192.168.1.5"})
	if err != nil {
		t.Fatalf("ForwardedFor() error = %v", err)
	}

	tests := []struct {
		name, remote, xff, want string
	}{
		{"untrusted peer ignores header", "8.8.8.8:1000", "1.2.3.4", "8.8.8.8"},
		{"trusted peer uses last hop", "10.1.2.3:1000", "1.2.3.4", "1.2.3.4"},
		{"skips trusted hops", "192.168.1.5:1000", "5.6.7.8, 1.2.3.4, 10.0.0.9", "1.2.3.4"},
		{"spoofed left hop is not used", "10.1.2.3:1000", "9.9.9.9, 1.2.3.4", "1.2.3.4"},
		{"no header falls back to peer", "10.1.2.3:1000", "", "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := key(req); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := ForwardedFor([]string{"not-an-ip"}); err == nil {
		t.Error("expected error for an invalid proxy")
	}
}

func TestTrustedProxies_FromProxy(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", "::1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies() error = %v", err)
	}

	tests := []struct {
		remote string
		want   bool
	}{
		{"10.4.5.6:443", true},
		{"[::1]:443", true},
		{"[::ffff:10.0.0.1]:443", true},
		{"8.8.8.8:443", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = tt.remote
		if got := proxies.FromProxy(req); got != tt.want {
			t.Errorf("FromProxy(%q) = %v, want %v", tt.remote, got, tt.want)
		}
	}

	var none TrustedProxies
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	if none.FromProxy(req) {
		t.Error("an empty list must trust nobody")
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS must not be sent over plain HTTP, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example/"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("allowed origin not echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin must not be allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("declared oversize body: status = %d, want 413", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if readErr == nil {
		t.Error("reading past the limit should fail")
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mw("outer"), mw("inner")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}
