package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewHTTPClient_BaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"localhost:8080", "http://localhost:8080"},
		{"http://gym.local/", "http://gym.local"},
		{"https://gym.example.com", "https://gym.example.com"},
	}
	for _, tt := range tests {
		if got := NewHTTPClient(tt.in, "").BaseURL(); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTTPClient_DoUnwrapsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderAuthToken) != "gdtk_t1" {
			t.Errorf("token header = %q", r.Header.Get(HeaderAuthToken))
		}
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("method = %s, content-type = %q", r.Method, r.Header.Get("Content-Type"))
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": "OK",
			"data": map[string]string{"echo": body["name"]},
		})
	}))
	defer srv.Close()

	var out struct {
		Echo string `json:"echo"`
	}
	c := NewHTTPClient(srv.URL, "gdtk_t1")
	if err := c.Post(context.Background(), "/x", map[string]string{"name": "yoga"}, &out); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if out.Echo != "yoga" {
		t.Errorf("Echo = %q", out.Echo)
	}
}

func TestHTTPClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"GYM-AUTH-4011","message":"authentication required"}`))
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL, "").Get(context.Background(), "/y", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != "GYM-AUTH-4011" || !IsUnauthorized(err) {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "authentication required") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestHTTPClient_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]any
	if err := NewHTTPClient(srv.URL, "").Delete(context.Background(), "/z"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := NewHTTPClient(srv.URL, "").Post(context.Background(), "/z", nil, &out); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if out != nil {
		t.Errorf("out = %v, want untouched", out)
	}
}

func TestHTTPClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL, "").Get(context.Background(), "/", nil)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v, want status 502", err)
	}
}
