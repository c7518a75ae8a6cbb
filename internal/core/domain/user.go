package domain

import (
	"strings"
	"time"
	"unicode"
)

// Role tells which profile a user account belongs to.
type Role string

const (
	RoleTrainee Role = "trainee"
	RoleTrainer Role = "trainer"
)

// Name constraints.
const (
	MaxNameLength = 64

	// UserIDPrefix is the prefix for user IDs.
	UserIDPrefix = "gdus-"
)

// User is the account shared by trainees and trainers. Usernames are
// unique across both roles.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Active       bool      `json:"active"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates an active user with a generated ID. Username and
// password hash are assigned by the credential service.
func NewUser(firstName, lastName string, role Role) (*User, error) {
	id, err := generatePrefixedID(UserIDPrefix)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:        id,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Active:    true,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BaseUsername derives the "first.last" login name before any collision
// suffix is applied. Whitespace is dropped and letters are lowercased.
func BaseUsername(firstName, lastName string) string {
	return normalizeNamePart(firstName) + "." + normalizeNamePart(lastName)
}

func normalizeNamePart(s string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// ValidateNames checks first and last name.
func ValidateNames(firstName, lastName string) []FieldError {
	var fields []FieldError
	check := func(field, v string) {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			fields = append(fields, FieldError{Field: field, Message: "is required"})
		case len(v) > MaxNameLength:
			fields = append(fields, FieldError{Field: field, Message: "exceeds 64 characters"})
		}
	}
	check("firstName", firstName)
	check("lastName", lastName)
	return fields
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
