// Package mongo implements repository.Store on MongoDB. Each entity lives in its own
// collection and children reference their parent by id; cascades are done by hand.
// Transactions need a replica set deployment.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	userCollectionName              = "users"
	exerciseCollectionName          = "exercises"
	workoutCollectionName           = "workouts"
	workoutExerciseCollectionName   = "workout_exercises"
	executionCollectionName         = "executions"
	executionExerciseCollectionName = "execution_exercises"
	executionSetCollectionName      = "execution_sets"
	goalCollectionName              = "goals"
)

// ConnectDB establishes a connection to MongoDB using the provided URI.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	// The initial connection might succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// EnsureIndexes creates the indexes every collection needs. Call once during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		userCollectionName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		exerciseCollectionName: {
			// Sparse because catalog exercises have no owner
			{Keys: bson.D{{Key: "ownerId", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		workoutCollectionName: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		workoutExerciseCollectionName: {
			{
				Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "exerciseId", Value: 1}}},
		},
		executionCollectionName: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "startedAt", Value: -1}}},
			{Keys: bson.D{{Key: "workoutId", Value: 1}}},
		},
		executionExerciseCollectionName: {
			{Keys: bson.D{{Key: "executionId", Value: 1}, {Key: "order", Value: 1}}},
			{Keys: bson.D{{Key: "exerciseId", Value: 1}}},
		},
		executionSetCollectionName: {
			{Keys: bson.D{{Key: "executionExerciseId", Value: 1}, {Key: "order", Value: 1}}},
		},
		goalCollectionName: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "startDate", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", collection, err)
		}
	}
	return nil
}
