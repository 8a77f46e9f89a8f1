package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/repository/memstore"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	store *memstore.Store
	log   *logger.Logger
	owner primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store: memstore.New(),
		log:   logger.Nop(),
		owner: primitive.NewObjectID(),
	}
}

func (f *fixture) seedCatalog(t *testing.T, entries ...domain.Exercise) []domain.Exercise {
	t.Helper()
	svc := NewExerciseService(f.store.Exercises(), 0, f.log)
	_, _, err := svc.SeedCatalog(context.Background(), entries)
	require.NoError(t, err)
	catalog, err := svc.ListCatalog(context.Background(), 0)
	require.NoError(t, err)
	return catalog
}

func (f *fixture) createPlan(t *testing.T, owner primitive.ObjectID, exercises ...domain.PlanExerciseSpec) *domain.GeneratedPlan {
	t.Helper()
	plan := &domain.GeneratedPlan{OwnerID: owner, Title: "Upper body", Exercises: exercises}
	_, err := f.store.Plans().Create(context.Background(), plan)
	require.NoError(t, err)
	return plan
}

func (f *fixture) materializer(opts MaterializerOptions) MaterializerService {
	return NewMaterializerService(f.store, f.store.Plans(), f.store.Workouts(), f.store.WorkoutExercises(), f.store.Exercises(), opts, f.log)
}

func (f *fixture) completions(opts CompletionOptions) *completionService {
	return NewCompletionService(f.store.Plans(), f.store.Completions(), f.store.SchemaProbe(), opts, f.log).(*completionService)
}

func intp(v int) *int { return &v }

var pushUpsAndLats = []domain.Exercise{
	{Name: "Push-ups", MuscleGroup: "chest", Equipment: "bodyweight"},
	{Name: "Lat Pulldown", MuscleGroup: "back", Equipment: "cable"},
}
