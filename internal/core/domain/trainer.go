package domain

import "strings"

// Trainer is a staff member with a single specialization.
type Trainer struct {
	User

	// Specialization is the name of a TrainingType.
	Specialization string `json:"specialization"`
}

// Validate checks the trainer profile fields.
func (t *Trainer) Validate() error {
	fields := ValidateNames(t.FirstName, t.LastName)
	if strings.TrimSpace(t.Specialization) == "" {
		fields = append(fields, FieldError{Field: "specialization", Message: "is required"})
	}
	if len(fields) > 0 {
		return ErrValidation.WithFields(fields...)
	}
	return nil
}

// Clone returns a copy of the trainer.
func (t *Trainer) Clone() *Trainer {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
