package mongo

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoExecutionRepository implements repository.ExecutionRepository over three
// collections: executions, execution_exercises and execution_sets.
type mongoExecutionRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func (r *mongoExecutionRepository) exercises() *mongo.Collection {
	return r.db.Collection(executionExerciseCollectionName)
}

func (r *mongoExecutionRepository) sets() *mongo.Collection {
	return r.db.Collection(executionSetCollectionName)
}

func (r *mongoExecutionRepository) Create(ctx context.Context, execution *domain.Execution) error {
	if ok, err := exists(ctx, r.db.Collection(workoutCollectionName), execution.WorkoutID); err != nil || !ok {
		return orNotFound(err)
	}

	newID(&execution.ID)
	t := now()
	execution.CreatedAt = t
	execution.UpdatedAt = t

	_, err := r.collection.InsertOne(ctx, execution)
	return err
}

func (r *mongoExecutionRepository) GetByID(ctx context.Context, id string) (*domain.Execution, error) {
	var execution domain.Execution
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&execution); err != nil {
		return nil, notFound(err)
	}

	tree := []domain.Execution{execution}
	if err := r.loadTrees(ctx, tree); err != nil {
		return nil, err
	}
	return &tree[0], nil
}

// loadTrees attaches ordered exercises and sets to the given executions.
func (r *mongoExecutionRepository) loadTrees(ctx context.Context, executions []domain.Execution) error {
	if len(executions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(executions))
	for _, e := range executions {
		ids = append(ids, e.ID)
	}

	exercises, err := r.findExercises(ctx, bson.M{"executionId": bson.M{"$in": ids}})
	if err != nil {
		return err
	}

	exerciseIDs := make([]string, 0, len(exercises))
	for _, ee := range exercises {
		exerciseIDs = append(exerciseIDs, ee.ID)
	}
	setsByExercise := map[string][]domain.ExecutionSet{}
	if len(exerciseIDs) > 0 {
		findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
		cursor, err := r.sets().Find(ctx, bson.M{"executionExerciseId": bson.M{"$in": exerciseIDs}}, findOptions)
		if err != nil {
			return err
		}
		var sets []domain.ExecutionSet
		if err := cursor.All(ctx, &sets); err != nil {
			return err
		}
		for _, set := range sets {
			setsByExercise[set.ExecutionExerciseID] = append(setsByExercise[set.ExecutionExerciseID], set)
		}
	}

	byExecution := map[string][]domain.ExecutionExercise{}
	for _, ee := range exercises {
		ee.Sets = setsByExercise[ee.ID]
		if ee.Sets == nil {
			ee.Sets = []domain.ExecutionSet{}
		}
		byExecution[ee.ExecutionID] = append(byExecution[ee.ExecutionID], ee)
	}
	for i := range executions {
		executions[i].Exercises = byExecution[executions[i].ID]
		if executions[i].Exercises == nil {
			executions[i].Exercises = []domain.ExecutionExercise{}
		}
	}
	return nil
}

func executionQuery(filter repository.ExecutionFilter) bson.M {
	query := bson.M{"ownerId": filter.OwnerID}
	if filter.WorkoutID != "" {
		query["workoutId"] = filter.WorkoutID
	}
	if filter.From != nil || filter.To != nil {
		window := bson.M{}
		if filter.From != nil {
			window["$gte"] = *filter.From
		}
		if filter.To != nil {
			window["$lte"] = *filter.To
		}
		query["startedAt"] = window
	}
	return query
}

// List returns executions newest first, each with its tree.
func (r *mongoExecutionRepository) List(ctx context.Context, filter repository.ExecutionFilter) ([]domain.Execution, error) {
	findOptions := pageOptions(filter.Page).SetSort(bson.D{{Key: "startedAt", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, executionQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	executions := []domain.Execution{}
	if err = cursor.All(ctx, &executions); err != nil {
		return nil, err
	}
	if err := r.loadTrees(ctx, executions); err != nil {
		return nil, err
	}
	return executions, nil
}

// History returns the owner's executions oldest first, without trees.
func (r *mongoExecutionRepository) History(ctx context.Context, ownerID string) ([]domain.Execution, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	executions := []domain.Execution{}
	if err = cursor.All(ctx, &executions); err != nil {
		return nil, err
	}
	return executions, nil
}

func (r *mongoExecutionRepository) Count(ctx context.Context, filter repository.ExecutionFilter) (int, error) {
	n, err := r.collection.CountDocuments(ctx, executionQuery(filter))
	return int(n), err
}

// Update replaces the execution document; nil optional fields are dropped from it.
func (r *mongoExecutionRepository) Update(ctx context.Context, execution *domain.Execution) error {
	var existing domain.Execution
	if err := r.collection.FindOne(ctx, bson.M{"_id": execution.ID}).Decode(&existing); err != nil {
		return notFound(err)
	}
	execution.OwnerID = existing.OwnerID
	execution.WorkoutID = existing.WorkoutID
	execution.CreatedAt = existing.CreatedAt
	execution.UpdatedAt = now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": execution.ID}, execution)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoExecutionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return r.deleteWhere(ctx, bson.M{"_id": id})
}

// deleteWhere removes the matching executions with their exercises and sets.
func (r *mongoExecutionRepository) deleteWhere(ctx context.Context, filter bson.M) error {
	executionIDs, err := documentIDs(ctx, r.collection, filter)
	if err != nil {
		return err
	}
	if len(executionIDs) == 0 {
		return nil
	}

	exercises, err := r.findExercises(ctx, bson.M{"executionId": bson.M{"$in": executionIDs}})
	if err != nil {
		return err
	}
	exerciseIDs := make([]string, 0, len(exercises))
	for _, ee := range exercises {
		exerciseIDs = append(exerciseIDs, ee.ID)
	}

	if len(exerciseIDs) > 0 {
		if _, err := r.sets().DeleteMany(ctx, bson.M{"executionExerciseId": bson.M{"$in": exerciseIDs}}); err != nil {
			return err
		}
	}
	if _, err := r.exercises().DeleteMany(ctx, bson.M{"executionId": bson.M{"$in": executionIDs}}); err != nil {
		return err
	}
	_, err = r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": executionIDs}})
	return err
}

func (r *mongoExecutionRepository) CreateExercise(ctx context.Context, ee *domain.ExecutionExercise) error {
	if ok, err := exists(ctx, r.collection, ee.ExecutionID); err != nil || !ok {
		return orNotFound(err)
	}
	if ok, err := exists(ctx, r.db.Collection(exerciseCollectionName), ee.ExerciseID); err != nil || !ok {
		return orNotFound(err)
	}

	newID(&ee.ID)
	t := now()
	ee.CreatedAt = t
	ee.UpdatedAt = t

	_, err := r.exercises().InsertOne(ctx, ee)
	return err
}

func (r *mongoExecutionRepository) UpdateExercise(ctx context.Context, ee *domain.ExecutionExercise) error {
	var existing domain.ExecutionExercise
	if err := r.exercises().FindOne(ctx, bson.M{"_id": ee.ID}).Decode(&existing); err != nil {
		return notFound(err)
	}
	ee.ExecutionID = existing.ExecutionID
	ee.CreatedAt = existing.CreatedAt
	ee.UpdatedAt = now()

	_, err := r.exercises().ReplaceOne(ctx, bson.M{"_id": ee.ID}, ee)
	return err
}

func (r *mongoExecutionRepository) ListExercises(ctx context.Context, executionID string) ([]domain.ExecutionExercise, error) {
	return r.findExercises(ctx, bson.M{"executionId": executionID})
}

func (r *mongoExecutionRepository) findExercises(ctx context.Context, filter bson.M) ([]domain.ExecutionExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.exercises().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []domain.ExecutionExercise{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoExecutionRepository) CreateSet(ctx context.Context, set *domain.ExecutionSet) error {
	if ok, err := exists(ctx, r.exercises(), set.ExecutionExerciseID); err != nil || !ok {
		return orNotFound(err)
	}

	newID(&set.ID)
	t := now()
	set.CreatedAt = t
	set.UpdatedAt = t

	_, err := r.sets().InsertOne(ctx, set)
	return err
}

func (r *mongoExecutionRepository) DeleteSets(ctx context.Context, executionExerciseID string) error {
	_, err := r.sets().DeleteMany(ctx, bson.M{"executionExerciseId": executionExerciseID})
	return err
}
