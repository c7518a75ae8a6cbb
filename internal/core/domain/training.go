package domain

import (
	"strings"
	"time"
)

// Training constraints.
const (
	MaxTrainingNameLength = 128

	// TrainingIDPrefix is the prefix for training IDs.
	TrainingIDPrefix = "gdtr-"
)

// Training is one scheduled session between a trainee and a trainer.
type Training struct {
	ID              string    `json:"id"`
	TraineeUsername string    `json:"trainee_username"`
	TrainerUsername string    `json:"trainer_username"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Date            Date      `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTraining creates a training with a generated ID.
func NewTraining(trainee, trainer, name, trainingType string, date Date, duration int) (*Training, error) {
	id, err := generatePrefixedID(TrainingIDPrefix)
	if err != nil {
		return nil, err
	}
	return &Training{
		ID:              id,
		TraineeUsername: trainee,
		TrainerUsername: trainer,
		Name:            strings.TrimSpace(name),
		Type:            trainingType,
		Date:            date,
		DurationMinutes: duration,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// Validate checks the training fields.
func (t *Training) Validate() error {
	var fields []FieldError
	if t.TraineeUsername == "" {
		fields = append(fields, FieldError{Field: "traineeUsername", Message: "is required"})
	}
	if t.TrainerUsername == "" {
		fields = append(fields, FieldError{Field: "trainerUsername", Message: "is required"})
	}
	switch {
	case t.Name == "":
		fields = append(fields, FieldError{Field: "name", Message: "is required"})
	case len(t.Name) > MaxTrainingNameLength:
		fields = append(fields, FieldError{Field: "name", Message: "exceeds 128 characters"})
	}
	if t.Date.IsZero() {
		fields = append(fields, FieldError{Field: "date", Message: "is required"})
	}
	if t.DurationMinutes <= 0 {
		fields = append(fields, FieldError{Field: "duration", Message: "must be positive"})
	}
	if len(fields) > 0 {
		return ErrValidation.WithFields(fields...)
	}
	return nil
}

// TrainingFilter narrows a training listing. Zero fields do not filter.
type TrainingFilter struct {
	From Date
	To   Date

	// PartnerName matches a case-insensitive substring of the other
	// party's full name (the trainer for trainee listings and vice versa).
	PartnerName string

	// Type restricts to one training type.
	Type string
}

// Matches reports whether t passes the filter. partnerFullName is the
// full name of the counterpart user.
func (f TrainingFilter) Matches(t *Training, partnerFullName string) bool {
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	if f.Type != "" && NormalizeTrainingType(f.Type) != t.Type {
		return false
	}
	if f.PartnerName != "" &&
		!strings.Contains(strings.ToLower(partnerFullName), strings.ToLower(strings.TrimSpace(f.PartnerName))) {
		return false
	}
	return true
}

// TrainingDetail is a training joined with both participants' full names.
type TrainingDetail struct {
	Training

	TraineeName string `json:"trainee_name"`
	TrainerName string `json:"trainer_name"`
}
