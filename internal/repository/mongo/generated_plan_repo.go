// internal/repository/mongo/generated_plan_repo.go
package mongo

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const generatedPlanCollectionName = "generated_plans"

// mongoGeneratedPlanRepository implements repository.GeneratedPlanRepository
type mongoGeneratedPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoGeneratedPlanRepository creates a new GeneratedPlan repository.
func NewMongoGeneratedPlanRepository(db *mongo.Database) repository.GeneratedPlanRepository {
	return &mongoGeneratedPlanRepository{
		collection: db.Collection(generatedPlanCollectionName),
	}
}

// Create inserts a new, unmapped plan.
func (r *mongoGeneratedPlanRepository) Create(ctx context.Context, plan *domain.GeneratedPlan) (primitive.ObjectID, error) {
	if plan.OwnerID == primitive.NilObjectID || plan.Title == "" {
		return primitive.NilObjectID, errors.New("plan requires ownerId and title")
	}
	plan.ID = primitive.NewObjectID()
	plan.Mapped = false
	plan.MaterializedWorkoutID = nil
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return primitive.NilObjectID, err
	}
	return plan.ID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoGeneratedPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GeneratedPlan, error) {
	var plan domain.GeneratedPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByOwnerID lists an owner's plans, newest first.
func (r *mongoGeneratedPlanRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.GeneratedPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.GeneratedPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// MarkMapped flips mapped to true together with the workout reference. The
// filter only matches unmapped plans, so the pair is written at most once.
func (r *mongoGeneratedPlanRepository) MarkMapped(ctx context.Context, planID, workoutID primitive.ObjectID) error {
	filter := bson.M{
		"_id":    planID,
		"mapped": bson.M{"$ne": true},
	}
	update := bson.M{
		"$set": bson.M{
			"mapped":                true,
			"materializedWorkoutId": workoutID,
			"updatedAt":             time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the plan vanished or someone else mapped it.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": planID})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

// DeleteByOwnerID removes every plan of an owner.
func (r *mongoGeneratedPlanRepository) DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureGeneratedPlanIndexes creates necessary indexes. Call during startup.
func EnsureGeneratedPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
