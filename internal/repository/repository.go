package repository

import (
	"alcyxob/fitness-tracker/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	// ErrConflict means a conditional write matched nothing because another
	// writer got there first.
	ErrConflict     = RepositoryError("conflicting concurrent write")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn so that every repository call made with the ctx it
// receives commits or rolls back as one unit. Implementations may re-run fn
// on transient errors, so fn must not keep state between attempts.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ExerciseRepository is the catalog accessor. ListCatalog returns entries in
// a stable order (creation time, then id).
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByName(ctx context.Context, name string) (*domain.Exercise, error)
	ListCatalog(ctx context.Context, limit int) ([]domain.Exercise, error)
}

// GeneratedPlanRepository stores AI plan documents.
type GeneratedPlanRepository interface {
	Create(ctx context.Context, plan *domain.GeneratedPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GeneratedPlan, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.GeneratedPlan, error)
	// MarkMapped sets mapped=true and materializedWorkoutId only if the plan
	// is not mapped yet. Returns ErrConflict when it already is.
	MarkMapped(ctx context.Context, planID, workoutID primitive.ObjectID) error
	DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

// WorkoutRepository stores materialized workouts. Create returns
// ErrDuplicateKey when a workout already exists for the same plan.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) (*domain.Workout, error)
	GetIDsByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

// WorkoutExerciseRepository stores the immutable workout → exercise links.
type WorkoutExerciseRepository interface {
	CreateMany(ctx context.Context, links []domain.WorkoutExercise) error
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error)
	DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) (int64, error)
}

// CompletionRepository stores completion records.
type CompletionRepository interface {
	// Create writes the stable column subset plus whichever optional columns
	// are enabled in cols.
	Create(ctx context.Context, record *domain.CompletionRecord, cols domain.CompletionColumns) (primitive.ObjectID, error)
	// ListByOwner returns newest first. An empty kind matches every kind.
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, kind string, limit int) ([]domain.CompletionRecord, error)
	// CountCompleted counts records with a non-null completedAt inside window.
	CountCompleted(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error)
	// SumCalories sums caloriesBurned (null as zero) of completed records inside window.
	SumCalories(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error)
	DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

// CompletionSchemaProbe reports which optional completion columns the
// deployed schema accepts.
type CompletionSchemaProbe interface {
	CompletionColumns(ctx context.Context) (domain.CompletionColumns, error)
}
