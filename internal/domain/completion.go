package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionKindAIGenerated tags completions of AI generated plans.
const CompletionKindAIGenerated = "ai_generated"

// CompletionMetadata is the structured payload embedded in a completion's
// notes. Its JSON shape is persisted inside historical records and must not change.
type CompletionMetadata struct {
	ExercisesCompleted *int   `json:"exercisesCompleted,omitempty"`
	TotalExercises     *int   `json:"totalExercises,omitempty"`
	Duration           *int   `json:"duration,omitempty"` // minutes
	UserNotes          string `json:"userNotes,omitempty"`
}

// CompletionRecord is one logged attempt at a plan. Only the stable subset
// (owner, plan, kind, calories, rating, notes, completedAt) is guaranteed to
// exist in every deployment's schema; the remaining columns are optional.
type CompletionRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID        primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	PlanID         primitive.ObjectID `bson:"planId" json:"planId"`
	Kind           string             `bson:"kind" json:"kind"`
	CaloriesBurned *int               `bson:"caloriesBurned" json:"caloriesBurned"`
	Rating         *int               `bson:"rating" json:"rating"`
	Notes          string             `bson:"notes" json:"notes"`
	CompletedAt    *time.Time         `bson:"completedAt" json:"completedAt"`

	Duration           *int `bson:"duration,omitempty" json:"duration,omitempty"`
	ExercisesCompleted *int `bson:"exercisesCompleted,omitempty" json:"exercisesCompleted,omitempty"`
	TotalExercises     *int `bson:"totalExercises,omitempty" json:"totalExercises,omitempty"`

	// Decoded from Notes on read; never stored.
	Metadata *CompletionMetadata `bson:"-" json:"metadata,omitempty"`
}

// CompletionColumns reports which optional completion columns the current
// schema accepts.
type CompletionColumns struct {
	Duration           bool `json:"duration"`
	ExercisesCompleted bool `json:"exercisesCompleted"`
	TotalExercises     bool `json:"totalExercises"`
}

// AllCompletionColumns is the capability set of an unconstrained schema.
var AllCompletionColumns = CompletionColumns{Duration: true, ExercisesCompleted: true, TotalExercises: true}

// TimeWindow is a half-open [From, To) range; nil bounds are open.
type TimeWindow struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && !t.Before(*w.To) {
		return false
	}
	return true
}
