package mongo

import (
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	inTx   bool
}

func NewStore(client *mongo.Client, dbName string) *Store {
	return &Store{
		client: client,
		db:     client.Database(dbName),
	}
}

// Database exposes the underlying database, e.g. for EnsureIndexes.
func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) Users() repository.UserRepository {
	return &mongoUserRepository{db: s.db, collection: s.db.Collection(userCollectionName)}
}

func (s *Store) Exercises() repository.ExerciseRepository {
	return &mongoExerciseRepository{db: s.db, collection: s.db.Collection(exerciseCollectionName)}
}

func (s *Store) Workouts() repository.WorkoutRepository {
	return &mongoWorkoutRepository{db: s.db, collection: s.db.Collection(workoutCollectionName)}
}

func (s *Store) Executions() repository.ExecutionRepository {
	return &mongoExecutionRepository{db: s.db, collection: s.db.Collection(executionCollectionName)}
}

func (s *Store) Goals() repository.GoalRepository {
	return &mongoGoalRepository{collection: s.db.Collection(goalCollectionName)}
}

// WithTx runs fn inside a session transaction. Every repository call made with the
// session context handed to fn joins the transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txStore := &Store{client: s.client, db: s.db, inTx: true}
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, txStore)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close gracefully disconnects the MongoDB client.
func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func now() time.Time {
	// mongo keeps millisecond precision, so round here to return what a later read returns
	return time.Now().UTC().Truncate(time.Millisecond)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

func pageOptions(page repository.Page) *options.FindOptions {
	page = page.Normalize()
	return options.Find().SetSkip(int64(page.Skip)).SetLimit(int64(page.Limit))
}

// exists reports whether a document with the given id is in the collection.
func exists(ctx context.Context, collection *mongo.Collection, id string) (bool, error) {
	n, err := collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
