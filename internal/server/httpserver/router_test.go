package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/gymdesk-go/internal/core/service"
	"github.com/yndnr/gymdesk-go/internal/server/httpserver/handler"
	"github.com/yndnr/gymdesk-go/internal/storage"
	"github.com/yndnr/gymdesk-go/internal/storage/kvstore"
	"github.com/yndnr/gymdesk-go/internal/storage/memory"
	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
	"github.com/yndnr/gymdesk-go/internal/telemetry/metric"
)

func discardLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "error", Output: io.Discard})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

type apiEnv struct {
	srv      *httptest.Server
	sessions *service.SessionService
	metrics  *metric.Registry
}

// newAPI serves the full router over in-memory storage.
func newAPI(t *testing.T, mutate func(*RouterConfig)) *apiEnv {
	t.Helper()
	kv := storage.NewMemoryEngine()
	t.Cleanup(func() { kv.Close() })
	store := kvstore.New(kv)

	sessions := service.NewSessionService(memory.New(), nil)
	hasher := &service.Argon2Hasher{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}
	creds := service.NewCredentialService(store, hasher)
	svc := handler.Services{
		Auth:      service.NewAuthService(creds, store, sessions, &service.AuthConfig{}),
		Sessions:  sessions,
		Trainees:  service.NewTraineeService(store, creds, sessions),
		Trainers:  service.NewTrainerService(store, creds, sessions),
		Trainings: service.NewTrainingService(store),
		Types:     service.NewTrainingTypeService(store),
	}
	if err := svc.Types.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	reg := metric.NewRegistry()
	log := discardLogger(t)
	cfg := &RouterConfig{
		Handler: handler.New(handler.Config{Services: svc, Metrics: reg, Logger: log.Slog()}),
		Metrics: reg,
		Logger:  log,
	}
	if mutate != nil {
		mutate(cfg)
	}

	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)
	return &apiEnv{srv: srv, sessions: sessions, metrics: reg}
}

func (e *apiEnv) call(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set(handler.HeaderAuthToken, token)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (e *apiEnv) registerTrainer(t *testing.T, first, last string) handler.CredentialsResponse {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/v1/trainers", "", handler.RegisterTrainerRequest{
		FirstName: first, LastName: last, Specialization: "STRENGTH",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register trainer: %d %s", resp.StatusCode, body)
	}
	var creds handler.CredentialsResponse
	unmarshalData(t, body, &creds)
	return creds
}

func (e *apiEnv) registerTrainee(t *testing.T, first, last string) handler.CredentialsResponse {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/v1/trainees", "", handler.RegisterTraineeRequest{
		FirstName: first, LastName: last,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register trainee: %d %s", resp.StatusCode, body)
	}
	var creds handler.CredentialsResponse
	unmarshalData(t, body, &creds)
	return creds
}

func (e *apiEnv) login(t *testing.T, creds handler.CredentialsResponse) string {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/v1/auth/login", "", handler.LoginRequest{
		Username: creds.Username, Password: creds.Password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %s", resp.StatusCode, body)
	}
	var lr handler.LoginResponse
	unmarshalData(t, body, &lr)
	return lr.Token
}

func unmarshalData(t *testing.T, body []byte, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, body)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var env handler.Response
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, body)
	}
	return env.Code
}

// Login as alice, read her profile, fail on bob's, then fail again after
// logout.
func TestRouter_TrainerProfileBoundToToken(t *testing.T) {
	api := newAPI(t, nil)
	alice := api.registerTrainer(t, "Alice", "Smith")
	bob := api.registerTrainer(t, "Bob", "Jones")

	t1 := api.login(t, alice)

	resp, body := api.call(t, http.MethodGet, "/api/v1/trainers/"+alice.Username, t1, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("own profile: %d %s", resp.StatusCode, body)
	}
	var profile handler.TrainerProfileResponse
	unmarshalData(t, body, &profile)
	if profile.Username != alice.Username || profile.FirstName != "Alice" {
		t.Errorf("profile = %+v", profile)
	}

	resp, body = api.call(t, http.MethodGet, "/api/v1/trainers/"+bob.Username, t1, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("foreign profile status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "GYM-AUTH-4011" {
		t.Errorf("code = %q, want GYM-AUTH-4011", code)
	}

	if resp, _ = api.call(t, http.MethodPost, "/api/v1/auth/logout", t1, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp, _ = api.call(t, http.MethodGet, "/api/v1/trainers/"+alice.Username, t1, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("profile after logout status = %d, want 401", resp.StatusCode)
	}
}

func TestRouter_TraineeEndpointsAcceptAnyLiveToken(t *testing.T) {
	api := newAPI(t, nil)
	john := api.registerTrainee(t, "John", "Doe")
	jane := api.registerTrainee(t, "Jane", "Roe")
	tok := api.login(t, john)

	// Trainee endpoints check only that the token is live.
	resp, body := api.call(t, http.MethodGet, "/api/v1/trainees/"+jane.Username, tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("trainee profile: %d %s", resp.StatusCode, body)
	}

	resp, _ = api.call(t, http.MethodGet, "/api/v1/trainees/"+jane.Username, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", resp.StatusCode)
	}

	resp, _ = api.call(t, http.MethodGet, "/api/v1/trainees/"+jane.Username, "gdtk_not-a-real-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown token status = %d, want 401", resp.StatusCode)
	}
}

func TestRouter_AvailableWinsOverUsername(t *testing.T) {
	api := newAPI(t, nil)
	john := api.registerTrainee(t, "John", "Doe")
	api.registerTrainer(t, "Kate", "Lee")
	tok := api.login(t, john)

	resp, body := api.call(t, http.MethodGet, "/api/v1/trainers/available?traineeUsername="+john.Username, tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("available: %d %s", resp.StatusCode, body)
	}
	var list []handler.TrainerSummary
	unmarshalData(t, body, &list)
	if len(list) != 1 {
		t.Errorf("available = %+v", list)
	}
}

func TestRouter_OpenEndpoints(t *testing.T) {
	api := newAPI(t, nil)

	for _, path := range []string{"/health", "/ready", "/api/v1/training-types"} {
		resp, body := api.call(t, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: %d %s", path, resp.StatusCode, body)
		}
	}

	resp, _ := api.call(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("logout without token status = %d, want 204", resp.StatusCode)
	}
}

func TestRouter_RequestID(t *testing.T) {
	api := newAPI(t, nil)

	resp, body := api.call(t, http.MethodGet, "/health", "", nil)
	generated := resp.Header.Get(HeaderRequestID)
	if len(generated) != 36 {
		t.Fatalf("generated request ID = %q, want a UUID", generated)
	}
	var env handler.Response
	_ = json.Unmarshal(body, &env)
	if env.RequestID != generated {
		t.Errorf("envelope request_id = %q, header = %q", env.RequestID, generated)
	}

	req, _ := http.NewRequest(http.MethodGet, api.srv.URL+"/health", nil)
	req.Header.Set(HeaderRequestID, "client-supplied-1")
	resp, err := api.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != "client-supplied-1" {
		t.Errorf("propagated request ID = %q", got)
	}
}

func TestRouter_NotFound(t *testing.T) {
	api := newAPI(t, nil)
	resp, body := api.call(t, http.MethodGet, "/api/v1/unknown", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "GYM-SYS-4040" {
		t.Errorf("code = %q", code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	api := newAPI(t, nil)
	alice := api.registerTrainer(t, "Alice", "Smith")
	api.login(t, alice)
	api.call(t, http.MethodPost, "/api/v1/auth/login", "", handler.LoginRequest{Username: alice.Username, Password: "nope"})

	resp, body := api.call(t, http.MethodGet, "/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	text := string(body)
	for _, want := range []string{
		`gymdesk_http_requests_total{method="POST",route="/api/v1/trainers",status="201"} 1`,
		`gymdesk_auth_logins_total{outcome="success"} 1`,
		`gymdesk_auth_logins_total{outcome="failure"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRouter_MetricsAllowList(t *testing.T) {
	api := newAPI(t, func(cfg *RouterConfig) {
		cfg.MetricsAllowList = []string{"192.0.2.0/24"}
	})
	resp, _ := api.call(t, http.MethodGet, "/metrics", "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("metrics from loopback status = %d, want 403", resp.StatusCode)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	api := newAPI(t, func(cfg *RouterConfig) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 2
	})
	for i := 0; i < 2; i++ {
		if resp, _ := api.call(t, http.MethodGet, "/health", "", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	resp, body := api.call(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "GYM-SYS-4290" {
		t.Errorf("code = %q", code)
	}
}

func TestRouter_RateLimitSharedAcrossRoutes(t *testing.T) {
	api := newAPI(t, func(cfg *RouterConfig) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 2
	})

	steps := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/health", http.StatusOK},
		{"/ready", http.StatusTooManyRequests},
		{"/api/v1/training-types", http.StatusTooManyRequests},
	}
	for i, step := range steps {
		resp, body := api.call(t, http.MethodGet, step.path, "", nil)
		if resp.StatusCode != step.want {
			t.Fatalf("request %d GET %s status = %d, want %d", i, step.path, resp.StatusCode, step.want)
		}
		if step.want == http.StatusTooManyRequests {
			if code := errorCode(t, body); code != "GYM-SYS-4290" {
				t.Errorf("request %d code = %q", i, code)
			}
		}
	}
}

// get issues a GET with extra request headers.
func (e *apiEnv) get(t *testing.T, path string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	resp.Body.Close()
	return resp
}

func TestRouter_ForwardedHeadersNeedTrustedProxy(t *testing.T) {
	api := newAPI(t, func(cfg *RouterConfig) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
		cfg.MetricsAllowList = []string{"192.0.2.0/24"}
	})

	if resp := api.get(t, "/metrics", map[string]string{"X-Forwarded-For": "192.0.2.7"}); resp.StatusCode != http.StatusForbidden {
		t.Errorf("metrics with forged X-Forwarded-For status = %d, want 403", resp.StatusCode)
	}
	if resp := api.get(t, "/health", map[string]string{"X-Forwarded-For": "198.51.100.1"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("first request status = %d", resp.StatusCode)
	}
	if resp := api.get(t, "/health", map[string]string{"X-Forwarded-For": "198.51.100.2"}); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("rotating X-Forwarded-For status = %d, want 429", resp.StatusCode)
	}
}

func TestRouter_TrustedProxyForwardsClientIP(t *testing.T) {
	api := newAPI(t, func(cfg *RouterConfig) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
		cfg.MetricsAllowList = []string{"192.0.2.0/24"}
		cfg.TrustedProxies = []string{"127.0.0.1", "::1"}
	})

	if resp := api.get(t, "/metrics", map[string]string{"X-Forwarded-For": "192.0.2.7"}); resp.StatusCode != http.StatusOK {
		t.Errorf("metrics via trusted proxy status = %d, want 200", resp.StatusCode)
	}
	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		if resp := api.get(t, "/health", map[string]string{"X-Forwarded-For": client}); resp.StatusCode != http.StatusOK {
			t.Errorf("GET /health for %s status = %d, want 200", client, resp.StatusCode)
		}
	}
	if resp := api.get(t, "/health", map[string]string{"X-Forwarded-For": "198.51.100.1"}); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("repeat client status = %d, want 429", resp.StatusCode)
	}
}
