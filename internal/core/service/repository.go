package service

import (
	"context"
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// SessionRepository stores sessions keyed by token hash.
type SessionRepository interface {
	// Create stores a new session. Returns ErrSessionConflict if the
	// token hash is already bound.
	Create(ctx context.Context, session *domain.Session) error

	// GetByTokenHash returns the session bound to tokenHash or
	// ErrSessionNotFound.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)

	// Touch records activity on a session.
	Touch(ctx context.Context, tokenHash string, at time.Time) error

	// Delete removes a session. Returns ErrSessionNotFound if absent.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteIf removes a session when pred holds for its current state.
	DeleteIf(ctx context.Context, tokenHash string, pred func(*domain.Session) bool) (bool, error)

	// ListByUsername returns every session held by a user.
	ListByUsername(ctx context.Context, username string) ([]*domain.Session, error)

	// DeleteByUsername removes every session held by a user.
	DeleteByUsername(ctx context.Context, username string) (int, error)

	// DeleteExpired removes every session for which expired holds.
	DeleteExpired(ctx context.Context, expired func(*domain.Session) bool) (int, error)

	// Count returns the number of stored sessions.
	Count() int
}

// UserRepository reads and updates accounts regardless of role.
type UserRepository interface {
	// GetUser returns the account for username or ErrUserNotFound.
	GetUser(ctx context.Context, username string) (*domain.User, error)

	// UsernamesWithPrefix lists existing usernames starting with prefix.
	UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// TraineeRepository persists trainee profiles and trainer assignments.
type TraineeRepository interface {
	// CreateTrainee stores a new trainee. Returns ErrUsernameTaken if the
	// username is held by any user.
	CreateTrainee(ctx context.Context, trainee *domain.Trainee) error

	GetTrainee(ctx context.Context, username string) (*domain.Trainee, error)

	// UpdateTrainee replaces the profile, including the trainer set.
	UpdateTrainee(ctx context.Context, trainee *domain.Trainee) error

	// DeleteTrainee removes the trainee, its account and its trainings.
	DeleteTrainee(ctx context.Context, username string) error

	// ListTraineesByTrainer returns trainees assigned to a trainer.
	ListTraineesByTrainer(ctx context.Context, trainerUsername string) ([]*domain.Trainee, error)
}

// TrainerRepository persists trainer profiles.
type TrainerRepository interface {
	// CreateTrainer stores a new trainer. Returns ErrUsernameTaken if the
	// username is held by any user.
	CreateTrainer(ctx context.Context, trainer *domain.Trainer) error

	GetTrainer(ctx context.Context, username string) (*domain.Trainer, error)

	UpdateTrainer(ctx context.Context, trainer *domain.Trainer) error

	// ListTrainers returns every trainer ordered by username.
	ListTrainers(ctx context.Context) ([]*domain.Trainer, error)
}

// TrainingRepository persists trainings.
type TrainingRepository interface {
	CreateTraining(ctx context.Context, training *domain.Training) error

	// ListTraineeTrainings returns a trainee's trainings matching filter,
	// where PartnerName applies to the trainer.
	ListTraineeTrainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error)

	// ListTrainerTrainings returns a trainer's trainings matching filter,
	// where PartnerName applies to the trainee.
	ListTrainerTrainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error)
}

// TrainingTypeRepository persists the training type catalogue.
type TrainingTypeRepository interface {
	ListTrainingTypes(ctx context.Context) ([]domain.TrainingType, error)

	// GetTrainingType looks a type up by normalized name.
	GetTrainingType(ctx context.Context, name string) (*domain.TrainingType, error)

	// SeedTrainingTypes inserts missing catalogue entries.
	SeedTrainingTypes(ctx context.Context, types []domain.TrainingType) error
}

// GymStore is the full persistence surface used by the gym services.
type GymStore interface {
	UserRepository
	TraineeRepository
	TrainerRepository
	TrainingRepository
	TrainingTypeRepository
}
