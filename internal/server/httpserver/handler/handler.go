package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
)

// HeaderAuthToken carries the session token on authenticated requests.
const HeaderAuthToken = "X-Auth-Token"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// AuthMode selects the token check applied to a route.
type AuthMode int

const (
	// AuthNone leaves the route open.
	AuthNone AuthMode = iota

	// AuthToken requires a live token.
	AuthToken

	// AuthPathUser requires a live token bound to the {username} path value.
	AuthPathUser
)

// String returns the mode name.
func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "none"
	case AuthToken:
		return "token"
	case AuthPathUser:
		return "path-user"
	default:
		return "unknown"
	}
}

// Route is one API endpoint.
type Route struct {
	Method  string
	Pattern string
	Auth    AuthMode
	Handler http.HandlerFunc
}

// LoginObserver records login outcomes. *metric.Registry satisfies it.
type LoginObserver interface {
	ObserveLogin(outcome string)
	ObserveLogout()
}

// Services groups the core services the handlers call.
type Services struct {
	Auth      *service.AuthService
	Sessions  *service.SessionService
	Trainees  *service.TraineeService
	Trainers  *service.TrainerService
	Trainings *service.TrainingService
	Types     *service.TrainingTypeService
}

// Config configures a Handler.
type Config struct {
	Services Services

	// Metrics is optional.
	Metrics LoginObserver

	// Ready reports storage readiness for GET /ready. Nil means always ready.
	Ready func(ctx context.Context) error

	Logger *slog.Logger
}

// Handler serves the gymdesk API.
type Handler struct {
	svc     Services
	metrics LoginObserver
	ready   func(ctx context.Context) error
	logger  *slog.Logger
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		svc:     cfg.Services,
		metrics: cfg.Metrics,
		ready:   cfg.Ready,
		logger:  l,
	}
}

// Sessions returns the session service used for token checks.
func (h *Handler) Sessions() *service.SessionService {
	return h.svc.Sessions
}

// Routes returns every API endpoint.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health endpoints (no auth required)
		{http.MethodGet, "/health", AuthNone, h.handleHealth},
		{http.MethodGet, "/ready", AuthNone, h.handleReady},

		// Authentication
		{http.MethodPost, "/api/v1/auth/login", AuthNone, h.handleLogin},
		{http.MethodPost, "/api/v1/auth/logout", AuthNone, h.handleLogout},
		{http.MethodGet, "/api/v1/auth/validate", AuthNone, h.handleValidate},
		{http.MethodPut, "/api/v1/auth/change-password", AuthToken, h.handleChangePassword},

		// Trainees
		{http.MethodPost, "/api/v1/trainees", AuthNone, h.handleRegisterTrainee},
		{http.MethodGet, "/api/v1/trainees/{username}", AuthToken, h.handleGetTrainee},
		{http.MethodPut, "/api/v1/trainees", AuthToken, h.handleUpdateTrainee},
		{http.MethodDelete, "/api/v1/trainees/{username}", AuthToken, h.handleDeleteTrainee},
		{http.MethodPatch, "/api/v1/trainees/activation", AuthToken, h.handleTraineeActivation},
		{http.MethodPut, "/api/v1/trainees/{username}/trainers", AuthToken, h.handleUpdateTraineeTrainers},
		{http.MethodGet, "/api/v1/trainees/{username}/trainings", AuthToken, h.handleTraineeTrainings},

		// Trainers
		{http.MethodPost, "/api/v1/trainers", AuthNone, h.handleRegisterTrainer},
		{http.MethodGet, "/api/v1/trainers/available", AuthToken, h.handleAvailableTrainers},
		{http.MethodGet, "/api/v1/trainers/{username}", AuthPathUser, h.handleGetTrainer},
		{http.MethodPut, "/api/v1/trainers", AuthToken, h.handleUpdateTrainer},
		{http.MethodPatch, "/api/v1/trainers/activation", AuthToken, h.handleTrainerActivation},
		{http.MethodGet, "/api/v1/trainers/{username}/trainings", AuthPathUser, h.handleTrainerTrainings},

		// Trainings
		{http.MethodPost, "/api/v1/trainings", AuthToken, h.handleCreateTraining},
		{http.MethodGet, "/api/v1/training-types", AuthNone, h.handleListTrainingTypes},
	}
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsDomainError(err, "") || HTTPStatus(domain.GetErrorCode(err)) >= 500 {
		logger.L(r.Context()).Error("request failed", "error", err)
	}
	WriteError(w, r, err)
}

// WriteError writes err in the standard envelope. Errors that are not
// DomainErrors are reported as internal errors without their text.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		de = domain.ErrInternalServer
	}

	var details any
	switch {
	case len(de.Fields) > 0:
		details = de.Fields
	case de.Details != "":
		details = de.Details
	}

	requestID := logger.RequestIDFromContext(r.Context())
	response := NewErrorResponse(requestID, de.Code, de.Message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", de.Code)
	w.WriteHeader(HTTPStatus(de.Code))
	_ = json.NewEncoder(w).Encode(response)
}

// HTTPStatus maps an error code to its HTTP status. The first three digits
// of the numeric segment are the status.
func HTTPStatus(code string) int {
	idx := strings.LastIndexByte(code, '-')
	if idx < 0 || len(code)-idx-1 < 3 {
		return http.StatusInternalServerError
	}
	status, err := strconv.Atoi(code[idx+1 : idx+4])
	if err != nil || status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// decode reads a JSON body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domain.ErrBadRequest.WithDetails("request body is empty")
		case errors.As(err, &maxErr):
			return domain.ErrBadRequest.WithDetails("request body too large")
		default:
			return domain.ErrBadRequest.WithDetails("invalid JSON: " + err.Error())
		}
	}
	return nil
}

// requireOwner checks that the request token is bound to username. It is
// used where the username arrives in the body rather than the path.
func (h *Handler) requireOwner(r *http.Request, username string) error {
	if !h.svc.Sessions.IsValidFor(r.Context(), username, r.Header.Get(HeaderAuthToken)) {
		return domain.ErrUnauthenticated
	}
	return nil
}

func (h *Handler) observeLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(outcome)
	}
}

type clientIPKey struct{}

// WithClientIP records the resolved client address for ClientIP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the client address resolved by the RealIP middleware,
// or the connecting peer when none was resolved. Forwarding headers are
// never read here.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return RemoteHost(r)
}

// RemoteHost returns the host part of r.RemoteAddr.
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
