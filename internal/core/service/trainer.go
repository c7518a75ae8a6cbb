package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// TrainerService manages trainer profiles.
type TrainerService struct {
	store    GymStore
	creds    *CredentialService
	sessions *SessionService
}

// NewTrainerService creates a new TrainerService.
func NewTrainerService(store GymStore, creds *CredentialService, sessions *SessionService) *TrainerService {
	return &TrainerService{
		store:    store,
		creds:    creds,
		sessions: sessions,
	}
}

// RegisterTrainerRequest contains parameters for trainer registration.
type RegisterTrainerRequest struct {
	FirstName      string
	LastName       string
	Specialization string
}

// Register creates a trainer with a generated username and password.
func (s *TrainerService) Register(ctx context.Context, req *RegisterTrainerRequest) (*Credentials, error) {
	user, err := domain.NewUser(req.FirstName, req.LastName, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}
	trainer := &domain.Trainer{
		User:           *user,
		Specialization: domain.NormalizeTrainingType(req.Specialization),
	}
	if err := trainer.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSpecialization(ctx, trainer.Specialization); err != nil {
		return nil, err
	}

	password, hash, err := newPassword(s.creds)
	if err != nil {
		return nil, err
	}
	trainer.PasswordHash = hash

	username, err := registerWithUniqueName(ctx, s.creds, req.FirstName, req.LastName, func(username string) error {
		trainer.Username = username
		return s.store.CreateTrainer(ctx, trainer)
	})
	if err != nil {
		return nil, err
	}
	return &Credentials{Username: username, Password: password}, nil
}

func (s *TrainerService) checkSpecialization(ctx context.Context, name string) error {
	_, err := s.store.GetTrainingType(ctx, name)
	if errors.Is(err, domain.ErrTrainingTypeNotFound) {
		return domain.ErrValidation.WithFields(domain.FieldError{Field: "specialization", Message: "unknown training type " + name})
	}
	return err
}

// TrainerProfile is a trainer with its assigned trainees resolved.
type TrainerProfile struct {
	Trainer  *domain.Trainer
	Trainees []*domain.Trainee
}

// Get returns the trainer profile for username.
func (s *TrainerService) Get(ctx context.Context, username string) (*TrainerProfile, error) {
	trainer, err := s.store.GetTrainer(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, trainer)
}

func (s *TrainerService) profile(ctx context.Context, trainer *domain.Trainer) (*TrainerProfile, error) {
	trainees, err := s.store.ListTraineesByTrainer(ctx, trainer.Username)
	if err != nil {
		return nil, err
	}
	return &TrainerProfile{Trainer: trainer, Trainees: trainees}, nil
}

// UpdateTrainerRequest contains the new profile fields.
type UpdateTrainerRequest struct {
	Username       string
	FirstName      string
	LastName       string
	Specialization string // Empty keeps the current specialization
	Active         *bool  // nil keeps the current status
}

// Update replaces the profile fields of a trainer.
func (s *TrainerService) Update(ctx context.Context, req *UpdateTrainerRequest) (*TrainerProfile, error) {
	trainer, err := s.store.GetTrainer(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	wasActive := trainer.Active
	trainer.FirstName = strings.TrimSpace(req.FirstName)
	trainer.LastName = strings.TrimSpace(req.LastName)
	if spec := domain.NormalizeTrainingType(req.Specialization); spec != "" && spec != trainer.Specialization {
		if err := s.checkSpecialization(ctx, spec); err != nil {
			return nil, err
		}
		trainer.Specialization = spec
	}
	if req.Active != nil {
		trainer.Active = *req.Active
	}
	trainer.UpdatedAt = time.Now().UTC()

	if err := trainer.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTrainer(ctx, trainer); err != nil {
		return nil, err
	}
	if wasActive && !trainer.Active {
		s.sessions.RevokeUser(ctx, trainer.Username)
	}
	return s.profile(ctx, trainer)
}

// SetActive activates or deactivates a trainer. Deactivation ends all of
// the trainer's sessions.
func (s *TrainerService) SetActive(ctx context.Context, username string, active bool) error {
	trainer, err := s.store.GetTrainer(ctx, username)
	if err != nil {
		return err
	}
	if trainer.Active == active {
		return nil
	}
	trainer.Active = active
	trainer.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTrainer(ctx, trainer); err != nil {
		return err
	}
	if !active {
		s.sessions.RevokeUser(ctx, username)
	}
	return nil
}

// AvailableFor lists active trainers not yet assigned to the trainee.
func (s *TrainerService) AvailableFor(ctx context.Context, traineeUsername string) ([]*domain.Trainer, error) {
	trainee, err := s.store.GetTrainee(ctx, traineeUsername)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListTrainers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Trainer, 0, len(all))
	for _, t := range all {
		if t.Active && !trainee.HasTrainer(t.Username) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Trainings lists the trainer's trainings. filter.PartnerName matches the
// trainee's full name; filter.Type is ignored.
func (s *TrainerService) Trainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error) {
	if _, err := s.store.GetTrainer(ctx, username); err != nil {
		return nil, err
	}
	filter.Type = ""
	return s.store.ListTrainerTrainings(ctx, username, filter)
}
