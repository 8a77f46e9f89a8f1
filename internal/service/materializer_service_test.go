package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/repository/memstore"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func twoExercisePlan() []domain.PlanExerciseSpec {
	return []domain.PlanExerciseSpec{
		{Name: "Push-ups", Muscle: "chest", Sets: 3, Reps: "12"},
		{Name: "Unknown Lat Pulldown Variant X", Muscle: "lats / back", Sets: 4, Reps: "8-12"},
	}
}

func TestMaterialize_ResolvesAndLinks(t *testing.T) {
	f := newFixture(t)
	catalog := f.seedCatalog(t, pushUpsAndLats...)
	plan := f.createPlan(t, f.owner, twoExercisePlan()...)

	res, err := f.materializer(MaterializerOptions{DefaultRestSeconds: 90}).Materialize(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyMaterialized)
	require.Len(t, res.Links, 2)

	first, second := res.Links[0], res.Links[1]
	assert.Equal(t, catalog[0].ID, first.ExerciseID)
	assert.Equal(t, domain.MatchExact, first.MatchKind)
	require.NotNil(t, first.Reps)
	assert.Equal(t, 12, *first.Reps)
	assert.Equal(t, 0, first.OrderPosition)
	assert.Equal(t, 90, first.RestSeconds)

	assert.Equal(t, catalog[1].ID, second.ExerciseID)
	assert.Equal(t, domain.MatchCategory, second.MatchKind)
	assert.Nil(t, second.Reps)
	assert.Equal(t, "8-12", second.RepsText)
	assert.Equal(t, 4, second.Sets)
	assert.Equal(t, 1, second.OrderPosition)

	stored, err := f.store.Plans().GetByID(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.True(t, stored.Mapped)
	require.NotNil(t, stored.MaterializedWorkoutID)
	assert.Equal(t, res.WorkoutID, *stored.MaterializedWorkoutID)
}

func TestMaterialize_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t, pushUpsAndLats...)
	plan := f.createPlan(t, f.owner, twoExercisePlan()...)
	svc := f.materializer(MaterializerOptions{})

	first, err := svc.Materialize(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)
	second, err := svc.Materialize(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)

	assert.Equal(t, first.WorkoutID, second.WorkoutID)
	assert.True(t, second.AlreadyMaterialized)
	assert.Len(t, second.Links, 2)
	assert.Equal(t, memstore.Counts{Plans: 1, Workouts: 1, Links: 2}, f.store.Counts())
}

func TestMaterialize_EmptyCatalogAbortsWholePlan(t *testing.T) {
	f := newFixture(t)
	plan := f.createPlan(t, f.owner, twoExercisePlan()...)

	_, err := f.materializer(MaterializerOptions{}).Materialize(context.Background(), f.owner, plan.ID)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	assert.Equal(t, 0, f.store.Counts().Workouts)
	stored, _ := f.store.Plans().GetByID(context.Background(), plan.ID)
	assert.False(t, stored.Mapped)
}

func TestMaterialize_ExactMatchBeyondListingLimit(t *testing.T) {
	f := newFixture(t)
	entries := make([]domain.Exercise, 0, 501)
	for i := 0; i < 500; i++ {
		entries = append(entries, domain.Exercise{Name: fmt.Sprintf("Filler %03d", i), MuscleGroup: "legs"})
	}
	entries = append(entries, domain.Exercise{Name: "Push-ups", MuscleGroup: "chest"})
	f.seedCatalog(t, entries...)

	// The catalog listing stays capped at its default of 500.
	listed, err := NewExerciseService(f.store.Exercises(), 0, f.log).ListCatalog(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, listed, 500)

	pushUps, err := f.store.Exercises().GetByName(context.Background(), "Push-ups")
	require.NoError(t, err)
	plan := f.createPlan(t, f.owner, domain.PlanExerciseSpec{Name: "push-ups", Muscle: "chest", Reps: "10"})

	res, err := f.materializer(MaterializerOptions{}).Materialize(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)
	require.Len(t, res.Links, 1)
	assert.Equal(t, domain.MatchExact, res.Links[0].MatchKind)
	assert.Equal(t, pushUps.ID, res.Links[0].ExerciseID)
}

func TestMaterialize_RollsBackOnWriteFailure(t *testing.T) {
	for _, op := range []string{memstore.OpCreateWorkout, memstore.OpCreateLinks, memstore.OpMarkMapped} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			f.seedCatalog(t, pushUpsAndLats...)
			plan := f.createPlan(t, f.owner, twoExercisePlan()...)
			svc := f.materializer(MaterializerOptions{})

			cause := errors.New("connection reset")
			f.store.FailOn(op, cause)
			_, err := svc.Materialize(context.Background(), f.owner, plan.ID)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStorageWrite)
			assert.ErrorIs(t, err, cause)
			var swe *StorageWriteError
			require.ErrorAs(t, err, &swe)
			assert.Equal(t, "materialize plan", swe.Op)

			counts := f.store.Counts()
			assert.Equal(t, 0, counts.Workouts)
			assert.Equal(t, 0, counts.Links)
			stored, _ := f.store.Plans().GetByID(context.Background(), plan.ID)
			assert.False(t, stored.Mapped)
			assert.Nil(t, stored.MaterializedWorkoutID)

			// A whole-operation retry succeeds once storage recovers.
			f.store.FailOn(op, nil)
			res, err := svc.Materialize(context.Background(), f.owner, plan.ID)
			require.NoError(t, err)
			assert.Len(t, res.Links, 2)
		})
	}
}

// barrierPlans holds every GetByID caller until n of them have read the plan,
// so all of them see it unmapped.
type barrierPlans struct {
	repository.GeneratedPlanRepository
	arrived *sync.WaitGroup
}

func (b *barrierPlans) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GeneratedPlan, error) {
	plan, err := b.GeneratedPlanRepository.GetByID(ctx, id)
	b.arrived.Done()
	b.arrived.Wait()
	return plan, err
}

func TestMaterialize_ConcurrentCallsShareOneWorkout(t *testing.T) {
	const callers = 8
	f := newFixture(t)
	f.seedCatalog(t, pushUpsAndLats...)
	plan := f.createPlan(t, f.owner, twoExercisePlan()...)

	var arrived sync.WaitGroup
	arrived.Add(callers)
	plans := &barrierPlans{GeneratedPlanRepository: f.store.Plans(), arrived: &arrived}
	svc := NewMaterializerService(f.store, plans, f.store.Workouts(), f.store.WorkoutExercises(), f.store.Exercises(), MaterializerOptions{}, f.log)

	ids := make([]primitive.ObjectID, callers)
	errs := make([]error, callers)
	var done sync.WaitGroup
	for i := 0; i < callers; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			res, err := svc.Materialize(context.Background(), f.owner, plan.ID)
			errs[i] = err
			if err == nil {
				ids[i] = res.WorkoutID
			}
		}(i)
	}
	done.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	counts := f.store.Counts()
	assert.Equal(t, 1, counts.Workouts)
	assert.Equal(t, 2, counts.Links)
}

// stalePlans always reports the plan as unmapped, like a replica that has not
// caught up yet.
type stalePlans struct {
	repository.GeneratedPlanRepository
}

func (s stalePlans) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GeneratedPlan, error) {
	plan, err := s.GeneratedPlanRepository.GetByID(ctx, id)
	if plan != nil {
		plan.Mapped = false
		plan.MaterializedWorkoutID = nil
	}
	return plan, err
}

func TestMaterialize_StaleReadFallsBackToWinner(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t, pushUpsAndLats...)
	plan := f.createPlan(t, f.owner, twoExercisePlan()...)
	svc := NewMaterializerService(f.store, stalePlans{f.store.Plans()}, f.store.Workouts(), f.store.WorkoutExercises(), f.store.Exercises(), MaterializerOptions{}, f.log)

	first, err := svc.Materialize(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)
	second, err := svc.Materialize(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)

	assert.Equal(t, first.WorkoutID, second.WorkoutID)
	assert.True(t, second.AlreadyMaterialized)
	assert.Equal(t, 1, f.store.Counts().Workouts)
}

func TestMaterialize_OwnershipAndLookup(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t, pushUpsAndLats...)
	plan := f.createPlan(t, f.owner, twoExercisePlan()...)
	svc := f.materializer(MaterializerOptions{})

	_, err := svc.Materialize(context.Background(), primitive.NewObjectID(), plan.ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)

	_, err = svc.Materialize(context.Background(), f.owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.GetPlanWorkout(context.Background(), f.owner, plan.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	created, err := svc.Materialize(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)
	got, err := svc.GetPlanWorkout(context.Background(), f.owner, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, created.WorkoutID, got.WorkoutID)
	assert.Equal(t, plan.Title, got.Workout.Name)
	require.Len(t, got.Links, 2)
	assert.Equal(t, 0, got.Links[0].OrderPosition)
}

func TestParseReps(t *testing.T) {
	assert.Equal(t, 10, *parseReps(" 10 "))
	assert.Nil(t, parseReps("8-12"))
	assert.Nil(t, parseReps("to failure"))
	assert.Nil(t, parseReps(""))
	// Only whole-text integers count; a leading number is not enough.
	assert.Nil(t, parseReps("12 reps"))
	assert.Nil(t, parseReps("10 each side"))
	assert.Nil(t, parseReps("30s"))
}
