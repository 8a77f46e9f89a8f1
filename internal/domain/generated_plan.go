// internal/domain/generated_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanExerciseSpec is one free-text exercise line of a model-generated plan.
type PlanExerciseSpec struct {
	Name   string `bson:"name" json:"name"`
	Muscle string `bson:"muscle" json:"muscle"`
	Sets   int    `bson:"sets" json:"sets"`
	Reps   string `bson:"reps" json:"reps"` // Free text: "10", "8-12", "to failure"
}

// PlanDay is one entry of the plan's weekly structure.
type PlanDay struct {
	Day      string `bson:"day" json:"day"`
	Focus    string `bson:"focus,omitempty" json:"focus,omitempty"`
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"`
}

// GeneratedPlan is a persisted AI plan document. Mapped and
// MaterializedWorkoutID are written together, once, by the materializer.
type GeneratedPlan struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID               primitive.ObjectID  `bson:"ownerId" json:"ownerId"`
	Title                 string              `bson:"title" json:"title"`
	Description           string              `bson:"description,omitempty" json:"description,omitempty"`
	Exercises             []PlanExerciseSpec  `bson:"exercises" json:"exercises"`
	WeeklyStructure       []PlanDay           `bson:"weeklyStructure,omitempty" json:"weeklyStructure,omitempty"`
	Mapped                bool                `bson:"mapped" json:"mapped"`
	MaterializedWorkoutID *primitive.ObjectID `bson:"materializedWorkoutId,omitempty" json:"materializedWorkoutId,omitempty"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}
