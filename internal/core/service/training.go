package service

import (
	"context"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// TrainingService schedules trainings.
type TrainingService struct {
	store GymStore
}

// NewTrainingService creates a new TrainingService.
func NewTrainingService(store GymStore) *TrainingService {
	return &TrainingService{store: store}
}

// CreateTrainingRequest contains parameters for a new training.
type CreateTrainingRequest struct {
	TraineeUsername string
	TrainerUsername string
	Name            string
	Date            domain.Date
	DurationMinutes int
}

// Create records a training. Its type is the trainer's specialization,
// and the trainer is assigned to the trainee if not already.
func (s *TrainingService) Create(ctx context.Context, req *CreateTrainingRequest) (*domain.Training, error) {
	training, err := domain.NewTraining(req.TraineeUsername, req.TrainerUsername, req.Name, "", req.Date, req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if err := training.Validate(); err != nil {
		return nil, err
	}

	trainee, err := s.store.GetTrainee(ctx, req.TraineeUsername)
	if err != nil {
		return nil, err
	}
	trainer, err := s.store.GetTrainer(ctx, req.TrainerUsername)
	if err != nil {
		return nil, err
	}
	training.Type = trainer.Specialization

	if err := s.store.CreateTraining(ctx, training); err != nil {
		return nil, err
	}

	if trainee.AddTrainer(trainer.Username) {
		if err := s.store.UpdateTrainee(ctx, trainee); err != nil {
			return nil, err
		}
	}
	return training, nil
}
