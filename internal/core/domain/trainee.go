package domain

import (
	"slices"
	"time"
)

// MaxAddressLength bounds the free-form address field.
const MaxAddressLength = 256

// Trainee is a gym member.
type Trainee struct {
	User

	DateOfBirth Date   `json:"date_of_birth"`
	Address     string `json:"address,omitempty"`

	// Trainers holds the usernames of assigned trainers, sorted and unique.
	Trainers []string `json:"trainers"`
}

// Validate checks the trainee profile fields.
func (t *Trainee) Validate() error {
	fields := ValidateNames(t.FirstName, t.LastName)
	fields = append(fields, validateBirthDate(t.DateOfBirth)...)
	if len(t.Address) > MaxAddressLength {
		fields = append(fields, FieldError{Field: "address", Message: "exceeds 256 characters"})
	}
	if len(fields) > 0 {
		return ErrValidation.WithFields(fields...)
	}
	return nil
}

func validateBirthDate(d Date) []FieldError {
	if d.IsZero() {
		return nil
	}
	if !d.Before(Today()) {
		return []FieldError{{Field: "dateOfBirth", Message: "must be in the past"}}
	}
	return nil
}

// SetTrainers replaces the assigned trainer set.
func (t *Trainee) SetTrainers(usernames []string) {
	set := slices.Clone(usernames)
	slices.Sort(set)
	t.Trainers = slices.Compact(set)
	t.UpdatedAt = time.Now().UTC()
}

// AddTrainer assigns a trainer if not already assigned.
// Returns true if the set changed.
func (t *Trainee) AddTrainer(username string) bool {
	i, found := slices.BinarySearch(t.Trainers, username)
	if found {
		return false
	}
	t.Trainers = slices.Insert(t.Trainers, i, username)
	return true
}

// HasTrainer reports whether username is assigned.
func (t *Trainee) HasTrainer(username string) bool {
	_, found := slices.BinarySearch(t.Trainers, username)
	return found
}

// Clone returns a deep copy of the trainee.
func (t *Trainee) Clone() *Trainee {
	if t == nil {
		return nil
	}
	c := *t
	c.Trainers = slices.Clone(t.Trainers)
	return &c
}
