package mongo

import (
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// Multi-document transactions need the URI to point at a replica set.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary so a reachable-but-dead server fails fast.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection the service uses.
// The unique index on workouts.generatedPlanId is what keeps materialization
// at one workout per plan, so its failure is returned instead of ignored.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName))
	EnsureGeneratedPlanIndexes(ctx, db.Collection(generatedPlanCollectionName))
	EnsureWorkoutExerciseIndexes(ctx, db.Collection(workoutExerciseCollectionName))
	EnsureCompletionIndexes(ctx, db.Collection(completionCollectionName))
	return EnsureWorkoutIndexes(ctx, db.Collection(workoutCollectionName))
}

// insertError maps a unique index violation to repository.ErrDuplicateKey.
// Anything else is returned untouched so transient transaction errors keep
// their labels and WithTransaction can retry them.
func insertError(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateKey
	}
	return err
}
