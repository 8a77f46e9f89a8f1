package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/notesmeta"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Column modes for CompletionOptions.ColumnsMode.
const (
	ColumnsAuto    = "auto"
	ColumnsFull    = "full"
	ColumnsMinimal = "minimal"
)

// CompletionInput is what a user reports after finishing a plan. Every
// field is optional.
type CompletionInput struct {
	Duration           *int   `json:"duration"` // minutes
	ExercisesCompleted *int   `json:"exercisesCompleted"`
	TotalExercises     *int   `json:"totalExercises"`
	CaloriesBurned     *int   `json:"caloriesBurned"`
	Rating             *int   `json:"rating"`
	UserNotes          string `json:"userNotes"`
}

func (in CompletionInput) validate() error {
	for _, v := range []*int{in.Duration, in.ExercisesCompleted, in.TotalExercises, in.CaloriesBurned, in.Rating} {
		if v != nil && *v < 0 {
			return ErrValidationFailed
		}
	}
	return nil
}

type CompletionOptions struct {
	ColumnsMode  string
	ProbeTTL     time.Duration
	HistoryLimit int
}

type CompletionService interface {
	// RecordCompletion stores one completion of planID. The metadata is always
	// embedded in the notes; dedicated columns are written only where the
	// deployed schema has them.
	RecordCompletion(ctx context.Context, ownerID, planID primitive.ObjectID, in CompletionInput) (*domain.CompletionRecord, error)
	// GetCompletionHistory lists records newest first with Metadata decoded
	// from the notes. An empty kind returns every kind.
	GetCompletionHistory(ctx context.Context, ownerID primitive.ObjectID, kind string, limit int) ([]domain.CompletionRecord, error)
	// Columns reports the optional columns the next write will use.
	Columns(ctx context.Context) domain.CompletionColumns
}

type completionService struct {
	planRepo       repository.GeneratedPlanRepository
	completionRepo repository.CompletionRepository
	probe          repository.CompletionSchemaProbe
	opts           CompletionOptions
	log            *logger.Logger
	now            func() time.Time

	mu       sync.Mutex
	cached   domain.CompletionColumns
	cachedAt time.Time
	hasCache bool
}

func NewCompletionService(
	planRepo repository.GeneratedPlanRepository,
	completionRepo repository.CompletionRepository,
	probe repository.CompletionSchemaProbe,
	opts CompletionOptions,
	log *logger.Logger,
) CompletionService {
	opts.ColumnsMode = strings.ToLower(strings.TrimSpace(opts.ColumnsMode))
	if opts.ColumnsMode == "" {
		opts.ColumnsMode = ColumnsAuto
	}
	if opts.ProbeTTL <= 0 {
		opts.ProbeTTL = 10 * time.Minute
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	return &completionService{
		planRepo:       planRepo,
		completionRepo: completionRepo,
		probe:          probe,
		opts:           opts,
		log:            log,
		now:            time.Now,
	}
}

func (s *completionService) RecordCompletion(ctx context.Context, ownerID, planID primitive.ObjectID, in CompletionInput) (*domain.CompletionRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := loadOwnedPlan(ctx, s.planRepo, ownerID, planID); err != nil {
		return nil, err
	}

	meta := notesmeta.Sanitize(domain.CompletionMetadata{
		ExercisesCompleted: in.ExercisesCompleted,
		TotalExercises:     in.TotalExercises,
		Duration:           in.Duration,
		UserNotes:          strings.TrimSpace(in.UserNotes),
	})
	notes, err := notesmeta.Compose(meta)
	if err != nil {
		return nil, err
	}

	cols := s.Columns(ctx)
	completedAt := s.now().UTC()
	record := &domain.CompletionRecord{
		OwnerID:        ownerID,
		PlanID:         planID,
		Kind:           domain.CompletionKindAIGenerated,
		CaloriesBurned: in.CaloriesBurned,
		Rating:         in.Rating,
		Notes:          notes,
		CompletedAt:    &completedAt,
	}
	if cols.Duration {
		record.Duration = in.Duration
	}
	if cols.ExercisesCompleted {
		record.ExercisesCompleted = in.ExercisesCompleted
	}
	if cols.TotalExercises {
		record.TotalExercises = in.TotalExercises
	}

	if _, err := s.completionRepo.Create(ctx, record, cols); err != nil {
		// The schema may have changed under us; probe again next time.
		s.invalidateColumns()
		s.log.Error("completion write failed", "planId", planID.Hex(), "ownerId", ownerID.Hex(), "error", err)
		return nil, &StorageWriteError{Op: "record completion", Err: err}
	}

	record.Metadata = &meta
	s.log.Info("completion recorded", "completionId", record.ID.Hex(), "planId", planID.Hex(),
		"durationColumn", cols.Duration, "countColumns", cols.ExercisesCompleted && cols.TotalExercises)
	return record, nil
}

func (s *completionService) GetCompletionHistory(ctx context.Context, ownerID primitive.ObjectID, kind string, limit int) ([]domain.CompletionRecord, error) {
	if limit <= 0 || limit > s.opts.HistoryLimit {
		limit = s.opts.HistoryLimit
	}
	records, err := s.completionRepo.ListByOwner(ctx, ownerID, strings.TrimSpace(kind), limit)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if m, ok := notesmeta.Extract(records[i].Notes); ok {
			records[i].Metadata = m
		}
	}
	return records, nil
}

func (s *completionService) Columns(ctx context.Context) domain.CompletionColumns {
	switch s.opts.ColumnsMode {
	case ColumnsFull:
		return domain.AllCompletionColumns
	case ColumnsMinimal:
		return domain.CompletionColumns{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasCache && s.now().Sub(s.cachedAt) < s.opts.ProbeTTL {
		return s.cached
	}

	cols, err := s.probe.CompletionColumns(ctx)
	if err != nil {
		// Writing only the stable subset is always safe; the notes still carry everything.
		s.log.Warn("completion schema probe failed, writing stable columns only", "error", err)
		return domain.CompletionColumns{}
	}
	if !s.hasCache || cols != s.cached {
		s.log.Info("completion schema columns detected",
			"duration", cols.Duration, "exercisesCompleted", cols.ExercisesCompleted, "totalExercises", cols.TotalExercises)
	}
	s.cached, s.cachedAt, s.hasCache = cols, s.now(), true
	return cols
}

func (s *completionService) invalidateColumns() {
	s.mu.Lock()
	s.hasCache = false
	s.mu.Unlock()
}
