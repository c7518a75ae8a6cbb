package service

import (
	"context"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// TrainingTypeService exposes the training type catalogue.
type TrainingTypeService struct {
	repo TrainingTypeRepository
}

// NewTrainingTypeService creates a new TrainingTypeService.
func NewTrainingTypeService(repo TrainingTypeRepository) *TrainingTypeService {
	return &TrainingTypeService{repo: repo}
}

// List returns every training type.
func (s *TrainingTypeService) List(ctx context.Context) ([]domain.TrainingType, error) {
	return s.repo.ListTrainingTypes(ctx)
}

// Get returns a training type by name.
func (s *TrainingTypeService) Get(ctx context.Context, name string) (*domain.TrainingType, error) {
	return s.repo.GetTrainingType(ctx, domain.NormalizeTrainingType(name))
}

// Seed inserts the default catalogue entries that are missing.
func (s *TrainingTypeService) Seed(ctx context.Context) error {
	return s.repo.SeedTrainingTypes(ctx, domain.DefaultTrainingTypes)
}
