package handler

import (
	"net/http"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
)

// handleRegisterTrainer handles POST /api/v1/trainers.
func (h *Handler) handleRegisterTrainer(w http.ResponseWriter, r *http.Request) {
	var req RegisterTrainerRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	creds, err := h.svc.Trainers.Register(r.Context(), &service.RegisterTrainerRequest{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Specialization: req.Specialization,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, CredentialsResponse{Username: creds.Username, Password: creds.Password})
}

// handleGetTrainer handles GET /api/v1/trainers/{username}.
func (h *Handler) handleGetTrainer(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Trainers.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, trainerProfile(profile.Trainer, profile.Trainees))
}

// handleUpdateTrainer handles PUT /api/v1/trainers. The token must belong
// to the trainer being updated.
func (h *Handler) handleUpdateTrainer(w http.ResponseWriter, r *http.Request) {
	var req UpdateTrainerRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.requireOwner(r, req.Username); err != nil {
		WriteError(w, r, err)
		return
	}

	profile, err := h.svc.Trainers.Update(r.Context(), &service.UpdateTrainerRequest{
		Username:       req.Username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Specialization: req.Specialization,
		Active:         req.IsActive,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, trainerProfile(profile.Trainer, profile.Trainees))
}

// handleTrainerActivation handles PATCH /api/v1/trainers/activation.
func (h *Handler) handleTrainerActivation(w http.ResponseWriter, r *http.Request) {
	req, err := decodeActivation(w, r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.requireOwner(r, req.Username); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.svc.Trainers.SetActive(r.Context(), req.Username, *req.IsActive); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAvailableTrainers handles GET /api/v1/trainers/available.
func (h *Handler) handleAvailableTrainers(w http.ResponseWriter, r *http.Request) {
	trainee := r.URL.Query().Get("traineeUsername")
	if trainee == "" {
		WriteError(w, r, domain.ErrValidation.WithFields(domain.FieldError{Field: "traineeUsername", Message: "is required"}))
		return
	}
	trainers, err := h.svc.Trainers.AvailableFor(r.Context(), trainee)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, trainerSummaries(trainers))
}

// handleTrainerTrainings handles GET /api/v1/trainers/{username}/trainings.
func (h *Handler) handleTrainerTrainings(w http.ResponseWriter, r *http.Request) {
	filter, err := trainingFilter(r, "traineeName")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	details, err := h.svc.Trainers.Trainings(r.Context(), r.PathValue("username"), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, trainingResponses(details))
}
