package handler

import (
	"net/http"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
)

// handleRegisterTrainee handles POST /api/v1/trainees.
func (h *Handler) handleRegisterTrainee(w http.ResponseWriter, r *http.Request) {
	var req RegisterTraineeRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	creds, err := h.svc.Trainees.Register(r.Context(), &service.RegisterTraineeRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, CredentialsResponse{Username: creds.Username, Password: creds.Password})
}

// handleGetTrainee handles GET /api/v1/trainees/{username}.
func (h *Handler) handleGetTrainee(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Trainees.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, traineeProfile(profile.Trainee, profile.Trainers))
}

// handleUpdateTrainee handles PUT /api/v1/trainees.
func (h *Handler) handleUpdateTrainee(w http.ResponseWriter, r *http.Request) {
	var req UpdateTraineeRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	profile, err := h.svc.Trainees.Update(r.Context(), &service.UpdateTraineeRequest{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		Active:      req.IsActive,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, traineeProfile(profile.Trainee, profile.Trainers))
}

// handleDeleteTrainee handles DELETE /api/v1/trainees/{username}.
func (h *Handler) handleDeleteTrainee(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Trainees.Delete(r.Context(), r.PathValue("username")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTraineeActivation handles PATCH /api/v1/trainees/activation.
func (h *Handler) handleTraineeActivation(w http.ResponseWriter, r *http.Request) {
	req, err := decodeActivation(w, r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.svc.Trainees.SetActive(r.Context(), req.Username, *req.IsActive); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateTraineeTrainers handles PUT /api/v1/trainees/{username}/trainers.
func (h *Handler) handleUpdateTraineeTrainers(w http.ResponseWriter, r *http.Request) {
	var req UpdateTraineeTrainersRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	trainers, err := h.svc.Trainees.UpdateTrainers(r.Context(), r.PathValue("username"), req.TrainerUsernames)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, trainerSummaries(trainers))
}

// handleTraineeTrainings handles GET /api/v1/trainees/{username}/trainings.
func (h *Handler) handleTraineeTrainings(w http.ResponseWriter, r *http.Request) {
	filter, err := trainingFilter(r, "trainerName")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	details, err := h.svc.Trainees.Trainings(r.Context(), r.PathValue("username"), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, trainingResponses(details))
}

func decodeActivation(w http.ResponseWriter, r *http.Request) (*ActivationRequest, error) {
	var req ActivationRequest
	if err := decode(w, r, &req); err != nil {
		return nil, err
	}
	var fields []domain.FieldError
	if req.Username == "" {
		fields = append(fields, domain.FieldError{Field: "username", Message: "is required"})
	}
	if req.IsActive == nil {
		fields = append(fields, domain.FieldError{Field: "isActive", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, domain.ErrValidation.WithFields(fields...)
	}
	return &req, nil
}

// trainingFilter reads the listing query. partnerParam names the query
// key holding the counterpart's name.
func trainingFilter(r *http.Request, partnerParam string) (domain.TrainingFilter, error) {
	q := r.URL.Query()
	var fields []domain.FieldError

	from, err := domain.ParseDate(q.Get("from"))
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "from", Message: "must be YYYY-MM-DD"})
	}
	to, err := domain.ParseDate(q.Get("to"))
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "to", Message: "must be YYYY-MM-DD"})
	}
	if len(fields) > 0 {
		return domain.TrainingFilter{}, domain.ErrValidation.WithFields(fields...)
	}

	return domain.TrainingFilter{
		From:        from,
		To:          to,
		PartnerName: q.Get(partnerParam),
		Type:        q.Get("trainingType"),
	}, nil
}
