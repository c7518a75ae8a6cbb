package handler

import (
	"errors"
	"net/http"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
	"github.com/yndnr/gymdesk-go/internal/telemetry/metric"
)

// handleLogin handles POST /api/v1/auth/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	resp, err := h.svc.Auth.Login(r.Context(), &service.LoginRequest{
		Username:  req.Username,
		Password:  req.Password,
		ClientIP:  ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoginThrottled):
			h.observeLogin(metric.LoginThrottled)
		case !errors.Is(err, domain.ErrValidation):
			h.observeLogin(metric.LoginFailure)
		}
		h.handleServiceError(w, r, err)
		return
	}
	h.observeLogin(metric.LoginSuccess)

	h.writeJSON(w, r, http.StatusOK, LoginResponse{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
	})
}

// handleLogout handles POST /api/v1/auth/logout. Unknown and missing
// tokens are accepted, so repeated logouts all succeed.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.svc.Auth.Logout(r.Context(), r.Header.Get(HeaderAuthToken))
	if h.metrics != nil {
		h.metrics.ObserveLogout()
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidate handles GET /api/v1/auth/validate.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.Auth.Validate(r.Context(), r.Header.Get(HeaderAuthToken))
	if !resp.Valid {
		h.writeJSON(w, r, http.StatusUnauthorized, ValidateResponse{})
		return
	}
	username := resp.Username
	h.writeJSON(w, r, http.StatusOK, ValidateResponse{Valid: true, Username: &username})
}

// handleChangePassword handles PUT /api/v1/auth/change-password.
func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.requireOwner(r, req.Username); err != nil {
		WriteError(w, r, err)
		return
	}

	err := h.svc.Auth.ChangePassword(r.Context(), &service.ChangePasswordRequest{
		Username:     req.Username,
		OldPassword:  req.OldPassword,
		NewPassword:  req.NewPassword,
		CurrentToken: r.Header.Get(HeaderAuthToken),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
