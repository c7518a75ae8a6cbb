package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/gymdesk-go/internal/server/httpserver/handler"
	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "a,b,c,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestRequestID_SetsContext(t *testing.T) {
	var seen string
	h := RequestID(discardLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen != rec.Header().Get(HeaderRequestID) {
		t.Errorf("context ID = %q, header = %q", seen, rec.Header().Get(HeaderRequestID))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(seen) != 36 {
		t.Errorf("oversized client ID should be replaced, got %q", seen)
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID(discardLogger(t)), Recover())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("X-Error-Code") != "GYM-SYS-5000" {
		t.Errorf("X-Error-Code = %q", rec.Header().Get("X-Error-Code"))
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS([]string{"https://app.example.com"})(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/trainees", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Error("allowed origin not echoed")
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "X-Auth-Token") {
		t.Error("X-Auth-Token not in allowed headers")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want pass-through", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin got CORS headers")
	}
}

func TestNetworkACL(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := NetworkACL([]string{"10.0.0.0/8", "192.0.2.5", "not-an-ip"}, discardLogger(t))(ok)

	tests := []struct {
		remote string
		want   int
	}{
		{"10.1.2.3:4000", http.StatusOK},
		{"192.0.2.5:4000", http.StatusOK},
		{"192.0.2.6:4000", http.StatusForbidden},
		{"garbage", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.remote, rec.Code, tt.want)
		}
	}

	open := NetworkACL(nil, discardLogger(t))(ok)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("empty allowlist status = %d, want 200", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	var got string
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = handler.ClientIP(r)
	})
	trusted := RealIP([]string{"10.0.0.0/8", "192.0.2.1"}, discardLogger(t))(capture)
	untrusted := RealIP(nil, discardLogger(t))(capture)

	tests := []struct {
		name   string
		h      http.Handler
		remote string
		header map[string]string
		want   string
	}{
		{"no proxies ignores xff", untrusted, "203.0.113.9:1000", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "203.0.113.9"},
		{"no proxies ignores real ip", untrusted, "203.0.113.9:1000", map[string]string{"X-Real-IP": "198.51.100.1"}, "203.0.113.9"},
		{"untrusted peer ignores xff", trusted, "203.0.113.9:1000", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "203.0.113.9"},
		{"trusted peer", trusted, "10.0.0.2:1000", map[string]string{"X-Forwarded-For": "198.51.100.7"}, "198.51.100.7"},
		{"trusted chain", trusted, "10.0.0.2:1000", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.5"}, "198.51.100.7"},
		{"spoofed leftmost hop", trusted, "192.0.2.1:1000", map[string]string{"X-Forwarded-For": "6.6.6.6, 198.51.100.7"}, "198.51.100.7"},
		{"all hops trusted", trusted, "10.0.0.2:1000", map[string]string{"X-Forwarded-For": "10.0.0.9"}, "10.0.0.9"},
		{"malformed hop", trusted, "10.0.0.2:1000", map[string]string{"X-Forwarded-For": "junk"}, "10.0.0.2"},
		{"trusted real ip", trusted, "10.0.0.2:1000", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"no headers", trusted, "10.0.0.2:1000", nil, "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			tt.h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("client IP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkACL_IgnoresForwardedHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(ok, RealIP(nil, discardLogger(t)), NetworkACL([]string{"192.0.2.0/24"}, discardLogger(t)))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("X-Forwarded-For", "192.0.2.7")
	req.Header.Set("X-Real-IP", "192.0.2.7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for forged forwarding headers", rec.Code)
	}
}

func TestResponseWriter_CapturesFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	w := wrapResponseWriter(rec)
	if w.statusCode != http.StatusOK {
		t.Fatalf("default status = %d", w.statusCode)
	}
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)
	if w.statusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.statusCode)
	}
	if w.Unwrap() != rec {
		t.Error("Unwrap should return the wrapped writer")
	}
}
