package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
)

func TestAuth_LoginLogoutValidate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.registerTrainee(t, "Alice", "Archer")

	resp, err := h.auth.Login(ctx, &service.LoginRequest{Username: c.Username, Password: c.Password, ClientIP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Username != c.Username || resp.Token == "" || resp.SessionID == "" {
		t.Fatalf("LoginResponse = %+v", resp)
	}

	v := h.auth.Validate(ctx, resp.Token)
	if !v.Valid || v.Username != c.Username {
		t.Fatalf("Validate = %+v", v)
	}

	h.auth.Logout(ctx, resp.Token)
	h.auth.Logout(ctx, resp.Token)
	if v := h.auth.Validate(ctx, resp.Token); v.Valid || v.Username != "" {
		t.Fatalf("Validate after Logout = %+v", v)
	}
}

func TestAuth_LoginFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.registerTrainee(t, "Alice", "Archer")

	tests := []struct {
		name string
		req  *service.LoginRequest
		want error
	}{
		{"missing fields", &service.LoginRequest{}, domain.ErrValidation},
		{"wrong password", &service.LoginRequest{Username: c.Username, Password: "nope"}, domain.ErrInvalidCredentials},
		{"unknown user", &service.LoginRequest{Username: "ghost", Password: "nope"}, domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.auth.Login(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Login err = %v, want %v", err, tt.want)
			}
		})
	}
	if h.sessions.Count() != 0 {
		t.Fatalf("failed logins created %d sessions", h.sessions.Count())
	}
}

func TestAuth_LoginThrottled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.registerTrainee(t, "Alice", "Archer")

	// Burst is 3 in the harness.
	for i := 0; i < 3; i++ {
		_, _ = h.auth.Login(ctx, &service.LoginRequest{Username: c.Username, Password: "bad"})
	}
	_, err := h.auth.Login(ctx, &service.LoginRequest{Username: c.Username, Password: c.Password})
	if !errors.Is(err, domain.ErrLoginThrottled) {
		t.Fatalf("Login after burst err = %v, want ErrLoginThrottled", err)
	}

	// Other users are unaffected.
	other := h.registerTrainee(t, "Bob", "Baker")
	h.login(t, other)
}

func TestAuth_ChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.registerTrainer(t, "Carol", "Cole", "YOGA")

	current := h.login(t, c)
	other := h.login(t, c)

	err := h.auth.ChangePassword(ctx, &service.ChangePasswordRequest{
		Username:     c.Username,
		OldPassword:  c.Password,
		NewPassword:  "brand-new-pass",
		CurrentToken: current,
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if !h.sessions.IsValid(ctx, current) {
		t.Error("current session revoked by password change")
	}
	if h.sessions.IsValid(ctx, other) {
		t.Error("other session survived password change")
	}

	if _, err := h.creds.Authenticate(ctx, c.Username, c.Password); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}
	if _, err := h.creds.Authenticate(ctx, c.Username, "brand-new-pass"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestAuth_ChangePasswordValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.registerTrainee(t, "Alice", "Archer")

	err := h.auth.ChangePassword(ctx, &service.ChangePasswordRequest{Username: c.Username, OldPassword: c.Password, NewPassword: "short"})
	var de *domain.DomainError
	if !errors.As(err, &de) || de.Code != domain.ErrValidation.Code || len(de.Fields) != 1 || de.Fields[0].Field != "newPassword" {
		t.Fatalf("short password err = %v", err)
	}

	err = h.auth.ChangePassword(ctx, &service.ChangePasswordRequest{Username: c.Username, OldPassword: "wrong-old", NewPassword: "long-enough"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong old password err = %v", err)
	}
}

func TestRateLimiterRegistry(t *testing.T) {
	r := service.NewRateLimiterRegistry(rate.Every(time.Hour), 2)

	if !r.Allow("a") || !r.Allow("a") {
		t.Fatal("burst not honoured")
	}
	if r.Allow("a") {
		t.Fatal("third event allowed")
	}
	if !r.Allow("b") {
		t.Fatal("keys share a limiter")
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	r.Delete("a")
	if !r.Allow("a") {
		t.Fatal("Delete did not reset the limiter")
	}
}
