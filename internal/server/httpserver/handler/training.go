package handler

import (
	"net/http"

	"github.com/yndnr/gymdesk-go/internal/core/service"
)

// handleCreateTraining handles POST /api/v1/trainings.
func (h *Handler) handleCreateTraining(w http.ResponseWriter, r *http.Request) {
	var req CreateTrainingRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	training, err := h.svc.Trainings.Create(r.Context(), &service.CreateTrainingRequest{
		TraineeUsername: req.TraineeUsername,
		TrainerUsername: req.TrainerUsername,
		Name:            req.Name,
		Date:            req.Date,
		DurationMinutes: req.Duration,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, trainingResponse(training))
}

// handleListTrainingTypes handles GET /api/v1/training-types.
func (h *Handler) handleListTrainingTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.Types.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	out := make([]TrainingTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, TrainingTypeResponse{ID: t.ID, Name: t.Name})
	}
	h.writeJSON(w, r, http.StatusOK, out)
}
