package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// maxRegisterAttempts bounds username regeneration when a concurrent
// registration claims the same name first.
const maxRegisterAttempts = 5

// Credentials are returned once, at registration.
type Credentials struct {
	Username string
	Password string
}

// TraineeService manages trainee profiles.
type TraineeService struct {
	store    GymStore
	creds    *CredentialService
	sessions *SessionService
}

// NewTraineeService creates a new TraineeService.
func NewTraineeService(store GymStore, creds *CredentialService, sessions *SessionService) *TraineeService {
	return &TraineeService{
		store:    store,
		creds:    creds,
		sessions: sessions,
	}
}

// RegisterTraineeRequest contains parameters for trainee registration.
type RegisterTraineeRequest struct {
	FirstName   string
	LastName    string
	DateOfBirth domain.Date // Optional
	Address     string      // Optional
}

// Register creates a trainee with a generated username and password.
func (s *TraineeService) Register(ctx context.Context, req *RegisterTraineeRequest) (*Credentials, error) {
	user, err := domain.NewUser(req.FirstName, req.LastName, domain.RoleTrainee)
	if err != nil {
		return nil, err
	}
	trainee := &domain.Trainee{
		User:        *user,
		DateOfBirth: req.DateOfBirth,
		Address:     strings.TrimSpace(req.Address),
		Trainers:    []string{},
	}
	if err := trainee.Validate(); err != nil {
		return nil, err
	}

	password, hash, err := s.newPassword()
	if err != nil {
		return nil, err
	}
	trainee.PasswordHash = hash

	username, err := registerWithUniqueName(ctx, s.creds, req.FirstName, req.LastName, func(username string) error {
		trainee.Username = username
		return s.store.CreateTrainee(ctx, trainee)
	})
	if err != nil {
		return nil, err
	}
	return &Credentials{Username: username, Password: password}, nil
}

func (s *TraineeService) newPassword() (plain, hash string, err error) {
	return newPassword(s.creds)
}

func newPassword(creds *CredentialService) (plain, hash string, err error) {
	plain, err = creds.GeneratePassword()
	if err != nil {
		return "", "", domain.ErrInternalServer.WithCause(err)
	}
	hash, err = creds.HashPassword(plain)
	if err != nil {
		return "", "", domain.ErrInternalServer.WithCause(err)
	}
	return plain, hash, nil
}

// registerWithUniqueName generates a username and calls create with it,
// regenerating when create reports the name as taken.
func registerWithUniqueName(ctx context.Context, creds *CredentialService, first, last string, create func(username string) error) (string, error) {
	for attempt := 0; attempt < maxRegisterAttempts; attempt++ {
		username, err := creds.GenerateUsername(ctx, first, last)
		if err != nil {
			return "", err
		}
		err = create(username)
		if errors.Is(err, domain.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return "", err
		}
		return username, nil
	}
	return "", domain.ErrUsernameTaken.WithDetails("could not allocate a unique username")
}

// TraineeProfile is a trainee with its assigned trainers resolved.
type TraineeProfile struct {
	Trainee  *domain.Trainee
	Trainers []*domain.Trainer
}

// Get returns the trainee profile for username.
func (s *TraineeService) Get(ctx context.Context, username string) (*TraineeProfile, error) {
	trainee, err := s.store.GetTrainee(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, trainee)
}

func (s *TraineeService) profile(ctx context.Context, trainee *domain.Trainee) (*TraineeProfile, error) {
	trainers := make([]*domain.Trainer, 0, len(trainee.Trainers))
	for _, u := range trainee.Trainers {
		trainer, err := s.store.GetTrainer(ctx, u)
		if errors.Is(err, domain.ErrTrainerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		trainers = append(trainers, trainer)
	}
	return &TraineeProfile{Trainee: trainee, Trainers: trainers}, nil
}

// UpdateTraineeRequest contains the new profile fields.
type UpdateTraineeRequest struct {
	Username    string
	FirstName   string
	LastName    string
	DateOfBirth domain.Date
	Address     string
	Active      *bool // nil keeps the current status
}

// Update replaces the profile fields of a trainee.
func (s *TraineeService) Update(ctx context.Context, req *UpdateTraineeRequest) (*TraineeProfile, error) {
	trainee, err := s.store.GetTrainee(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	wasActive := trainee.Active
	trainee.FirstName = strings.TrimSpace(req.FirstName)
	trainee.LastName = strings.TrimSpace(req.LastName)
	trainee.DateOfBirth = req.DateOfBirth
	trainee.Address = strings.TrimSpace(req.Address)
	if req.Active != nil {
		trainee.Active = *req.Active
	}
	trainee.UpdatedAt = time.Now().UTC()

	if err := trainee.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTrainee(ctx, trainee); err != nil {
		return nil, err
	}
	if wasActive && !trainee.Active {
		s.sessions.RevokeUser(ctx, trainee.Username)
	}
	return s.profile(ctx, trainee)
}

// Delete removes a trainee, its trainings and its sessions.
func (s *TraineeService) Delete(ctx context.Context, username string) error {
	if err := s.store.DeleteTrainee(ctx, username); err != nil {
		return err
	}
	s.sessions.RevokeUser(ctx, username)
	return nil
}

// SetActive activates or deactivates a trainee. Deactivation ends all of
// the trainee's sessions.
func (s *TraineeService) SetActive(ctx context.Context, username string, active bool) error {
	trainee, err := s.store.GetTrainee(ctx, username)
	if err != nil {
		return err
	}
	if trainee.Active == active {
		return nil
	}
	trainee.Active = active
	trainee.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTrainee(ctx, trainee); err != nil {
		return err
	}
	if !active {
		s.sessions.RevokeUser(ctx, username)
	}
	return nil
}

// UpdateTrainers replaces the trainee's trainer set and returns the
// resolved trainers.
func (s *TraineeService) UpdateTrainers(ctx context.Context, username string, trainerUsernames []string) ([]*domain.Trainer, error) {
	if len(trainerUsernames) == 0 {
		return nil, domain.ErrValidation.WithFields(domain.FieldError{Field: "trainerUsernames", Message: "must not be empty"})
	}

	trainee, err := s.store.GetTrainee(ctx, username)
	if err != nil {
		return nil, err
	}

	trainers := make([]*domain.Trainer, 0, len(trainerUsernames))
	seen := make(map[string]struct{}, len(trainerUsernames))
	for _, u := range trainerUsernames {
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, domain.ErrValidation.WithFields(domain.FieldError{Field: "trainerUsernames", Message: "must not contain blank entries"})
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		trainer, err := s.store.GetTrainer(ctx, u)
		if err != nil {
			if errors.Is(err, domain.ErrTrainerNotFound) {
				return nil, domain.ErrTrainerNotFound.WithDetails(u)
			}
			return nil, err
		}
		trainers = append(trainers, trainer)
	}

	names := make([]string, 0, len(trainers))
	for _, t := range trainers {
		names = append(names, t.Username)
	}
	trainee.SetTrainers(names)
	if err := s.store.UpdateTrainee(ctx, trainee); err != nil {
		return nil, err
	}
	return trainers, nil
}

// Trainings lists the trainee's trainings. filter.PartnerName matches the
// trainer's full name.
func (s *TraineeService) Trainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error) {
	if _, err := s.store.GetTrainee(ctx, username); err != nil {
		return nil, err
	}
	return s.store.ListTraineeTrainings(ctx, username, filter)
}
