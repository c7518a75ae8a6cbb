package handler

import (
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response body for POST /api/v1/auth/login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

// ValidateResponse is the response body for GET /api/v1/auth/validate.
// Username is null for an invalid token.
type ValidateResponse struct {
	Valid    bool    `json:"valid"`
	Username *string `json:"username"`
}

// ChangePasswordRequest is the request body for PUT /api/v1/auth/change-password.
type ChangePasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// CredentialsResponse carries the generated login of a new account.
type CredentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterTraineeRequest is the request body for POST /api/v1/trainees.
type RegisterTraineeRequest struct {
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	DateOfBirth domain.Date `json:"dateOfBirth"`
	Address     string      `json:"address"`
}

// UpdateTraineeRequest is the request body for PUT /api/v1/trainees.
type UpdateTraineeRequest struct {
	Username    string      `json:"username"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	DateOfBirth domain.Date `json:"dateOfBirth"`
	Address     string      `json:"address"`
	IsActive    *bool       `json:"isActive"`
}

// UpdateTraineeTrainersRequest is the request body for
// PUT /api/v1/trainees/{username}/trainers.
type UpdateTraineeTrainersRequest struct {
	TrainerUsernames []string `json:"trainerUsernames"`
}

// ActivationRequest is the request body for the activation endpoints.
type ActivationRequest struct {
	Username string `json:"username"`
	IsActive *bool  `json:"isActive"`
}

// RegisterTrainerRequest is the request body for POST /api/v1/trainers.
type RegisterTrainerRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
}

// UpdateTrainerRequest is the request body for PUT /api/v1/trainers.
type UpdateTrainerRequest struct {
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization,omitempty"`
	IsActive       *bool  `json:"isActive"`
}

// CreateTrainingRequest is the request body for POST /api/v1/trainings.
type CreateTrainingRequest struct {
	TraineeUsername string      `json:"traineeUsername"`
	TrainerUsername string      `json:"trainerUsername"`
	Name            string      `json:"name"`
	Date            domain.Date `json:"date"`
	Duration        int         `json:"duration"`
}

// TrainerSummary is a trainer as listed in other resources.
type TrainerSummary struct {
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
}

// TraineeSummary is a trainee as listed in a trainer profile.
type TraineeSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TraineeProfileResponse is the trainee profile.
type TraineeProfileResponse struct {
	Username    string           `json:"username"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	DateOfBirth domain.Date      `json:"dateOfBirth"`
	Address     string           `json:"address"`
	IsActive    bool             `json:"isActive"`
	Trainers    []TrainerSummary `json:"trainers"`
}

// TrainerProfileResponse is the trainer profile.
type TrainerProfileResponse struct {
	Username       string           `json:"username"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Specialization string           `json:"specialization"`
	IsActive       bool             `json:"isActive"`
	Trainees       []TraineeSummary `json:"trainees"`
}

// TrainingResponse is one training in a listing.
type TrainingResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Date            domain.Date `json:"date"`
	Type            string      `json:"type"`
	Duration        int         `json:"duration"`
	TraineeUsername string      `json:"traineeUsername"`
	TrainerUsername string      `json:"trainerUsername"`
	TraineeName     string      `json:"traineeName,omitempty"`
	TrainerName     string      `json:"trainerName,omitempty"`
}

// TrainingTypeResponse is one training type.
type TrainingTypeResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func trainerSummaries(trainers []*domain.Trainer) []TrainerSummary {
	out := make([]TrainerSummary, 0, len(trainers))
	for _, t := range trainers {
		out = append(out, TrainerSummary{
			Username:       t.Username,
			FirstName:      t.FirstName,
			LastName:       t.LastName,
			Specialization: t.Specialization,
		})
	}
	return out
}

func traineeProfile(t *domain.Trainee, trainers []*domain.Trainer) TraineeProfileResponse {
	return TraineeProfileResponse{
		Username:    t.Username,
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		DateOfBirth: t.DateOfBirth,
		Address:     t.Address,
		IsActive:    t.Active,
		Trainers:    trainerSummaries(trainers),
	}
}

func trainerProfile(t *domain.Trainer, trainees []*domain.Trainee) TrainerProfileResponse {
	summaries := make([]TraineeSummary, 0, len(trainees))
	for _, tr := range trainees {
		summaries = append(summaries, TraineeSummary{
			Username:  tr.Username,
			FirstName: tr.FirstName,
			LastName:  tr.LastName,
		})
	}
	return TrainerProfileResponse{
		Username:       t.Username,
		FirstName:      t.FirstName,
		LastName:       t.LastName,
		Specialization: t.Specialization,
		IsActive:       t.Active,
		Trainees:       summaries,
	}
}

func trainingResponse(t *domain.Training) TrainingResponse {
	return TrainingResponse{
		ID:              t.ID,
		Name:            t.Name,
		Date:            t.Date,
		Type:            t.Type,
		Duration:        t.DurationMinutes,
		TraineeUsername: t.TraineeUsername,
		TrainerUsername: t.TrainerUsername,
	}
}

func trainingResponses(details []*domain.TrainingDetail) []TrainingResponse {
	out := make([]TrainingResponse, 0, len(details))
	for _, d := range details {
		r := trainingResponse(&d.Training)
		r.TraineeName = d.TraineeName
		r.TrainerName = d.TrainerName
		out = append(out, r)
	}
	return out
}
