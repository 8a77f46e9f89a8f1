package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchKind records which resolution tier picked a link's catalog exercise.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchCategory MatchKind = "category"
	MatchFallback MatchKind = "fallback"
)

// Workout is the materialized form of exactly one GeneratedPlan.
// GeneratedPlanID is unique across the collection.
type Workout struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GeneratedPlanID primitive.ObjectID `bson:"generatedPlanId" json:"generatedPlanId"`
	OwnerID         primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// WorkoutExercise links a Workout to one catalog Exercise. Links are never
// edited; a corrected plan produces a new workout.
type WorkoutExercise struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID     primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseID    primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets          int                `bson:"sets" json:"sets"`
	Reps          *int               `bson:"reps" json:"reps"` // nil when the plan's reps text is not a plain integer
	RepsText      string             `bson:"repsText,omitempty" json:"repsText,omitempty"`
	RestSeconds   int                `bson:"restSeconds" json:"restSeconds"`
	OrderPosition int                `bson:"orderPosition" json:"orderPosition"`
	MatchKind     MatchKind          `bson:"matchKind" json:"matchKind"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
