package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// ExerciseService exposes the read-only exercise catalog. SeedCatalog is the
// only writer and is used by the seeding tool, never by request handlers.
type ExerciseService interface {
	ListCatalog(ctx context.Context, limit int) ([]domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	SeedCatalog(ctx context.Context, entries []domain.Exercise) (created, skipped int, err error)
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	maxLimit     int
	log          *logger.Logger
}

func NewExerciseService(exerciseRepo repository.ExerciseRepository, maxLimit int, log *logger.Logger) ExerciseService {
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		maxLimit:     maxLimit,
		log:          log,
	}
}

// ListCatalog returns up to limit entries in catalog order. A non-positive or
// oversized limit is clamped to the configured maximum.
func (s *exerciseService) ListCatalog(ctx context.Context, limit int) ([]domain.Exercise, error) {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.exerciseRepo.ListCatalog(ctx, limit)
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// SeedCatalog inserts entries whose name is not in the catalog yet. Existing
// entries are left untouched so that links pointing at them stay valid.
func (s *exerciseService) SeedCatalog(ctx context.Context, entries []domain.Exercise) (created, skipped int, err error) {
	for i := range entries {
		e := entries[i]
		e.Name = strings.TrimSpace(e.Name)
		e.MuscleGroup = strings.ToLower(strings.TrimSpace(e.MuscleGroup))
		if e.Name == "" {
			return created, skipped, ErrValidationFailed
		}

		_, err = s.exerciseRepo.GetByName(ctx, e.Name)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, skipped, err
		}

		if _, err = s.exerciseRepo.Create(ctx, &e); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				skipped++
				continue
			}
			return created, skipped, err
		}
		created++
		s.log.Debug("catalog entry added", "name", e.Name, "muscleGroup", e.MuscleGroup)
	}
	return created, skipped, nil
}
