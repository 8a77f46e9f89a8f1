// Package memstore is an in-process implementation of the repository
// interfaces. It backs the "memory" database driver for local runs and the
// service tests. It enforces the same unique keys as the Mongo indexes and
// gives WithTransaction all-or-nothing semantics by snapshotting state.
package memstore

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Operation names accepted by FailOn.
const (
	OpCreateWorkout     = "workouts.create"
	OpCreateLinks       = "workout_exercises.create"
	OpMarkMapped        = "generated_plans.markMapped"
	OpCreateCompletion  = "completions.create"
	OpProbeSchema       = "completions.probe"
	OpDeleteCompletions = "completions.delete"
)

type txKey struct{}

type data struct {
	users       map[primitive.ObjectID]domain.User
	exercises   []domain.Exercise
	plans       map[primitive.ObjectID]domain.GeneratedPlan
	workouts    map[primitive.ObjectID]domain.Workout
	links       []domain.WorkoutExercise
	completions []domain.CompletionRecord
}

func (d *data) clone() *data {
	c := &data{
		users:       make(map[primitive.ObjectID]domain.User, len(d.users)),
		exercises:   append([]domain.Exercise(nil), d.exercises...),
		plans:       make(map[primitive.ObjectID]domain.GeneratedPlan, len(d.plans)),
		workouts:    make(map[primitive.ObjectID]domain.Workout, len(d.workouts)),
		links:       append([]domain.WorkoutExercise(nil), d.links...),
		completions: append([]domain.CompletionRecord(nil), d.completions...),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.plans {
		c.plans[k] = v
	}
	for k, v := range d.workouts {
		c.workouts[k] = v
	}
	return c
}

// Store holds all collections behind one mutex.
type Store struct {
	mu       sync.Mutex
	d        *data
	columns  domain.CompletionColumns
	failures map[string]error
}

// New returns an empty store whose completion schema accepts every column.
func New() *Store {
	return &Store{
		d: &data{
			users:    map[primitive.ObjectID]domain.User{},
			plans:    map[primitive.ObjectID]domain.GeneratedPlan{},
			workouts: map[primitive.ObjectID]domain.Workout{},
		},
		columns:  domain.AllCompletionColumns,
		failures: map[string]error{},
	}
}

// SetCompletionColumns simulates a deployment whose completion schema only
// accepts the given optional columns. Writes of other columns fail.
func (s *Store) SetCompletionColumns(cols domain.CompletionColumns) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = cols
}

// FailOn makes every following call of op return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// lock takes the store mutex unless ctx already belongs to the running transaction.
func (s *Store) lock(ctx context.Context) func() {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

// WithTransaction serializes fn against every other store access and rolls
// the whole state back when fn fails.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// Repository accessors.

func (s *Store) Users() repository.UserRepository {
	return &userRepo{s}
}

func (s *Store) Exercises() repository.ExerciseRepository {
	return &exerciseRepo{s}
}

func (s *Store) Plans() repository.GeneratedPlanRepository {
	return &planRepo{s}
}

func (s *Store) Workouts() repository.WorkoutRepository {
	return &workoutRepo{s}
}

func (s *Store) WorkoutExercises() repository.WorkoutExerciseRepository {
	return &linkRepo{s}
}

func (s *Store) Completions() repository.CompletionRepository {
	return &completionRepo{s}
}

func (s *Store) SchemaProbe() repository.CompletionSchemaProbe {
	return &schemaProbe{s}
}

// Counts reports collection sizes; handy for assertions.
type Counts struct {
	Plans, Workouts, Links, Completions int
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Plans:       len(s.d.plans),
		Workouts:    len(s.d.workouts),
		Links:       len(s.d.links),
		Completions: len(s.d.completions),
	}
}

// RawCompletions returns copies of stored completion rows, as written.
func (s *Store) RawCompletions() []domain.CompletionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CompletionRecord(nil), s.d.completions...)
}

// InsertCompletion stores a row verbatim, bypassing column checks. Used to
// seed legacy records.
func (s *Store) InsertCompletion(record domain.CompletionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == primitive.NilObjectID {
		record.ID = primitive.NewObjectID()
	}
	s.d.completions = append(s.d.completions, record)
}

func errUnsupportedColumn(name string) error {
	return fmt.Errorf("document failed validation: unknown field %q", name)
}
