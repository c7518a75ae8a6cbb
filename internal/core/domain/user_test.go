package domain

import (
	"strings"
	"testing"
)

func TestBaseUsername(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"John", "Smith", "john.smith"},
		{"  Mary ", "Ann Lee", "mary.annlee"},
		{"ÉLISE", "Durand", "élise.durand"},
	}

	for _, tt := range tests {
		if got := BaseUsername(tt.first, tt.last); got != tt.want {
			t.Errorf("BaseUsername(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(" John ", "Smith", RoleTrainer)
	if err != nil {
		t.Fatalf("NewUser() error = %v", err)
	}
	if !strings.HasPrefix(u.ID, UserIDPrefix) {
		t.Errorf("ID = %q, want prefix %q", u.ID, UserIDPrefix)
	}
	if u.FirstName != "John" || !u.Active || u.Role != RoleTrainer {
		t.Errorf("NewUser() = %+v", u)
	}
	if u.FullName() != "John Smith" {
		t.Errorf("FullName() = %q", u.FullName())
	}
}

func TestValidateNames(t *testing.T) {
	if fields := ValidateNames("John", "Smith"); len(fields) != 0 {
		t.Errorf("ValidateNames(valid) = %v", fields)
	}

	fields := ValidateNames(" ", strings.Repeat("x", MaxNameLength+1))
	if len(fields) != 2 {
		t.Fatalf("ValidateNames() = %v, want 2 violations", fields)
	}
	if fields[0].Field != "firstName" || fields[1].Field != "lastName" {
		t.Errorf("ValidateNames() fields = %v", fields)
	}
}
