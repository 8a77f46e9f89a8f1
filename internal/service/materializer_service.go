package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/resolver"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaterializedWorkout is a workout together with its ordered exercise links.
type MaterializedWorkout struct {
	WorkoutID primitive.ObjectID       `json:"workoutId"`
	Workout   *domain.Workout          `json:"workout"`
	Links     []domain.WorkoutExercise `json:"links"`
	// AlreadyMaterialized is true when an earlier call (or a concurrent one)
	// created the workout.
	AlreadyMaterialized bool `json:"alreadyMaterialized"`
}

type MaterializerOptions struct {
	DefaultSets        int
	DefaultRestSeconds int
}

type MaterializerService interface {
	// Materialize turns a plan into a persisted workout exactly once. Repeated
	// and concurrent calls for the same plan all return the same workout.
	Materialize(ctx context.Context, ownerID, planID primitive.ObjectID) (*MaterializedWorkout, error)
	// GetPlanWorkout returns the workout of an already materialized plan.
	GetPlanWorkout(ctx context.Context, ownerID, planID primitive.ObjectID) (*MaterializedWorkout, error)
}

type materializerService struct {
	tx           repository.Transactor
	planRepo     repository.GeneratedPlanRepository
	workoutRepo  repository.WorkoutRepository
	linkRepo     repository.WorkoutExerciseRepository
	exerciseRepo repository.ExerciseRepository
	opts         MaterializerOptions
	log          *logger.Logger
}

func NewMaterializerService(
	tx repository.Transactor,
	planRepo repository.GeneratedPlanRepository,
	workoutRepo repository.WorkoutRepository,
	linkRepo repository.WorkoutExerciseRepository,
	exerciseRepo repository.ExerciseRepository,
	opts MaterializerOptions,
	log *logger.Logger,
) MaterializerService {
	if opts.DefaultSets <= 0 {
		opts.DefaultSets = 3
	}
	if opts.DefaultRestSeconds <= 0 {
		opts.DefaultRestSeconds = 60
	}
	return &materializerService{
		tx:           tx,
		planRepo:     planRepo,
		workoutRepo:  workoutRepo,
		linkRepo:     linkRepo,
		exerciseRepo: exerciseRepo,
		opts:         opts,
		log:          log,
	}
}

func (s *materializerService) Materialize(ctx context.Context, ownerID, planID primitive.ObjectID) (*MaterializedWorkout, error) {
	plan, err := loadOwnedPlan(ctx, s.planRepo, ownerID, planID)
	if err != nil {
		return nil, err
	}
	log := s.log.With("planId", planID.Hex(), "ownerId", ownerID.Hex())

	if plan.Mapped {
		return s.existing(ctx, plan)
	}

	// Resolve everything before the first write against the whole catalog;
	// an empty catalog aborts the whole plan.
	catalog, err := s.exerciseRepo.ListCatalog(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	resolutions, err := resolver.ResolveAll(plan.Exercises, catalog)
	if err != nil {
		log.Error("cannot materialize plan", "error", err)
		return nil, err
	}
	for i, r := range resolutions {
		if r.Kind == domain.MatchFallback {
			log.Warn("plan exercise fell back to round-robin catalog entry",
				"position", i, "requested", plan.Exercises[i].Name, "muscle", plan.Exercises[i].Muscle, "resolved", r.Exercise.Name)
		}
	}

	var result *MaterializedWorkout
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		workout := &domain.Workout{
			GeneratedPlanID: plan.ID,
			OwnerID:         plan.OwnerID,
			Name:            plan.Title,
			Description:     plan.Description,
		}
		workoutID, err := s.workoutRepo.Create(ctx, workout)
		if err != nil {
			return err
		}

		links := s.buildLinks(workoutID, plan.Exercises, resolutions)
		if len(links) > 0 {
			if err := s.linkRepo.CreateMany(ctx, links); err != nil {
				return err
			}
		}

		if err := s.planRepo.MarkMapped(ctx, plan.ID, workoutID); err != nil {
			return err
		}
		result = &MaterializedWorkout{WorkoutID: workoutID, Workout: workout, Links: links}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) || errors.Is(err, repository.ErrConflict) {
			log.Info("lost materialization race, returning existing workout", "error", err)
			return s.adoptWinner(ctx, plan)
		}
		log.Error("materialization rolled back", "error", err)
		return nil, &StorageWriteError{Op: "materialize plan", Err: err}
	}

	log.Info("plan materialized", "workoutId", result.WorkoutID.Hex(), "links", len(result.Links))
	return result, nil
}

func (s *materializerService) GetPlanWorkout(ctx context.Context, ownerID, planID primitive.ObjectID) (*MaterializedWorkout, error) {
	plan, err := loadOwnedPlan(ctx, s.planRepo, ownerID, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Mapped {
		return nil, ErrWorkoutNotFound
	}
	return s.existing(ctx, plan)
}

func (s *materializerService) buildLinks(workoutID primitive.ObjectID, specs []domain.PlanExerciseSpec, resolutions []resolver.Resolution) []domain.WorkoutExercise {
	links := make([]domain.WorkoutExercise, 0, len(specs))
	for i, spec := range specs {
		sets := spec.Sets
		if sets <= 0 {
			sets = s.opts.DefaultSets
		}
		links = append(links, domain.WorkoutExercise{
			WorkoutID:     workoutID,
			ExerciseID:    resolutions[i].Exercise.ID,
			Sets:          sets,
			Reps:          parseReps(spec.Reps),
			RepsText:      strings.TrimSpace(spec.Reps),
			RestSeconds:   s.opts.DefaultRestSeconds,
			OrderPosition: i,
			MatchKind:     resolutions[i].Kind,
		})
	}
	return links
}

// parseReps returns the reps count when text is a plain integer ("10"), nil
// for ranges or descriptions ("8-12", "to failure").
func parseReps(text string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	return &n
}

// existing loads the workout recorded on a mapped plan.
func (s *materializerService) existing(ctx context.Context, plan *domain.GeneratedPlan) (*MaterializedWorkout, error) {
	var (
		workout *domain.Workout
		err     error
	)
	if plan.MaterializedWorkoutID != nil {
		workout, err = s.workoutRepo.GetByID(ctx, *plan.MaterializedWorkoutID)
	} else {
		workout, err = s.workoutRepo.GetByPlanID(ctx, plan.ID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.withLinks(ctx, workout)
}

// adoptWinner returns the workout created by the request that beat us.
func (s *materializerService) adoptWinner(ctx context.Context, plan *domain.GeneratedPlan) (*MaterializedWorkout, error) {
	workout, err := s.workoutRepo.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConcurrentMaterialization, err)
	}
	return s.withLinks(ctx, workout)
}

func (s *materializerService) withLinks(ctx context.Context, workout *domain.Workout) (*MaterializedWorkout, error) {
	links, err := s.linkRepo.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		return nil, err
	}
	return &MaterializedWorkout{
		WorkoutID:           workout.ID,
		Workout:             workout,
		Links:               links,
		AlreadyMaterialized: true,
	}, nil
}
