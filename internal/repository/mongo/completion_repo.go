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

const completionCollectionName = "completions"

// mongoCompletionRepository implements repository.CompletionRepository
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new completion repository backed by MongoDB.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// Create inserts a completion. The document is built field by field so that
// optional columns the schema rejects are never sent.
func (r *mongoCompletionRepository) Create(ctx context.Context, record *domain.CompletionRecord, cols domain.CompletionColumns) (primitive.ObjectID, error) {
	if record.OwnerID == primitive.NilObjectID || record.PlanID == primitive.NilObjectID || record.Kind == "" {
		return primitive.NilObjectID, errors.New("completion requires ownerId, planId and kind")
	}
	record.ID = primitive.NewObjectID()
	if record.CompletedAt == nil {
		now := time.Now().UTC()
		record.CompletedAt = &now
	}

	doc := bson.D{
		{Key: "_id", Value: record.ID},
		{Key: "ownerId", Value: record.OwnerID},
		{Key: "planId", Value: record.PlanID},
		{Key: "kind", Value: record.Kind},
		{Key: "caloriesBurned", Value: record.CaloriesBurned},
		{Key: "notes", Value: record.Notes},
		{Key: "rating", Value: record.Rating},
		{Key: "completedAt", Value: record.CompletedAt},
	}
	if cols.Duration && record.Duration != nil {
		doc = append(doc, bson.E{Key: "duration", Value: *record.Duration})
	}
	if cols.ExercisesCompleted && record.ExercisesCompleted != nil {
		doc = append(doc, bson.E{Key: "exercisesCompleted", Value: *record.ExercisesCompleted})
	}
	if cols.TotalExercises && record.TotalExercises != nil {
		doc = append(doc, bson.E{Key: "totalExercises", Value: *record.TotalExercises})
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return primitive.NilObjectID, err
	}
	return record.ID, nil
}

// ListByOwner returns an owner's completions, newest first.
func (r *mongoCompletionRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, kind string, limit int) ([]domain.CompletionRecord, error) {
	filter := bson.M{"ownerId": ownerID}
	if kind != "" {
		filter["kind"] = kind
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []domain.CompletionRecord{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CountCompleted counts completed records inside window.
func (r *mongoCompletionRepository) CountCompleted(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error) {
	return r.collection.CountDocuments(ctx, completedFilter(ownerID, window))
}

// SumCalories adds up caloriesBurned inside window; missing or null values
// count as zero and fractional legacy values are truncated.
func (r *mongoCompletionRepository) SumCalories(ctx context.Context, ownerID primitive.ObjectID, window domain.TimeWindow) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: completedFilter(ownerID, window)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$toLong", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$caloriesBurned", 0}}}},
			}}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// DeleteByOwnerID erases every completion of an owner. Only user-data erasure calls this.
func (r *mongoCompletionRepository) DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func completedFilter(ownerID primitive.ObjectID, window domain.TimeWindow) bson.M {
	completedAt := bson.M{"$ne": nil}
	if window.From != nil {
		completedAt["$gte"] = *window.From
	}
	if window.To != nil {
		completedAt["$lt"] = *window.To
	}
	return bson.M{"ownerId": ownerID, "completedAt": completedAt}
}

// EnsureCompletionIndexes creates necessary indexes for the completions collection.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "kind", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
