package mongo

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoWorkoutRepository implements repository.WorkoutRepository.
// Template exercises live in their own collection keyed by workoutId.
type mongoWorkoutRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func (r *mongoWorkoutRepository) exercises() *mongo.Collection {
	return r.db.Collection(workoutExerciseCollectionName)
}

func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) error {
	newID(&workout.ID)
	t := now()
	workout.CreatedAt = t
	workout.UpdatedAt = t

	_, err := r.collection.InsertOne(ctx, workout)
	return err
}

func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	var workout domain.Workout
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout); err != nil {
		return nil, notFound(err)
	}

	exercises, err := r.ListExercises(ctx, id)
	if err != nil {
		return nil, err
	}
	workout.Exercises = exercises
	return &workout, nil
}

// ListByOwner returns the owner's templates, newest first, each with its exercises.
func (r *mongoWorkoutRepository) ListByOwner(ctx context.Context, ownerID string, page repository.Page) ([]domain.Workout, error) {
	findOptions := pageOptions(page).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return workouts, nil
	}

	ids := make([]string, 0, len(workouts))
	for _, w := range workouts {
		ids = append(ids, w.ID)
	}
	exercises, err := r.findExercises(ctx, bson.M{"workoutId": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	byWorkout := map[string][]domain.WorkoutExercise{}
	for _, we := range exercises {
		byWorkout[we.WorkoutID] = append(byWorkout[we.WorkoutID], we)
	}
	for i := range workouts {
		workouts[i].Exercises = byWorkout[workouts[i].ID]
		if workouts[i].Exercises == nil {
			workouts[i].Exercises = []domain.WorkoutExercise{}
		}
	}
	return workouts, nil
}

func (r *mongoWorkoutRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"ownerId": ownerID})
	return int(n), err
}

func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	update := bson.M{
		"$set": bson.M{
			"name":               workout.Name,
			"description":        workout.Description,
			"defaultRestSeconds": workout.DefaultRestSeconds,
			"updatedAt":          now(),
		},
	}
	// Return the document after the update so owner and createdAt are filled in.
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stored domain.Workout
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": workout.ID}, update, opts).Decode(&stored); err != nil {
		return notFound(err)
	}
	stored.Exercises = workout.Exercises
	*workout = stored
	return nil
}

// Delete removes the template, its exercises and all executions logged from it.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	if _, err := r.exercises().DeleteMany(ctx, bson.M{"workoutId": id}); err != nil {
		return err
	}

	executions := &mongoExecutionRepository{db: r.db, collection: r.db.Collection(executionCollectionName)}
	return executions.deleteWhere(ctx, bson.M{"workoutId": id})
}

func (r *mongoWorkoutRepository) AddExercise(ctx context.Context, we *domain.WorkoutExercise) error {
	if ok, err := exists(ctx, r.collection, we.WorkoutID); err != nil || !ok {
		return orNotFound(err)
	}
	if ok, err := exists(ctx, r.db.Collection(exerciseCollectionName), we.ExerciseID); err != nil || !ok {
		return orNotFound(err)
	}

	newID(&we.ID)
	t := now()
	we.CreatedAt = t
	we.UpdatedAt = t

	if _, err := r.exercises().InsertOne(ctx, we); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoWorkoutRepository) GetExercise(ctx context.Context, id string) (*domain.WorkoutExercise, error) {
	var we domain.WorkoutExercise
	if err := r.exercises().FindOne(ctx, bson.M{"_id": id}).Decode(&we); err != nil {
		return nil, notFound(err)
	}
	return &we, nil
}

func (r *mongoWorkoutRepository) ListExercises(ctx context.Context, workoutID string) ([]domain.WorkoutExercise, error) {
	return r.findExercises(ctx, bson.M{"workoutId": workoutID})
}

func (r *mongoWorkoutRepository) findExercises(ctx context.Context, filter bson.M) ([]domain.WorkoutExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.exercises().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []domain.WorkoutExercise{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoWorkoutRepository) UpdateExercise(ctx context.Context, we *domain.WorkoutExercise) error {
	if ok, err := exists(ctx, r.db.Collection(exerciseCollectionName), we.ExerciseID); err != nil || !ok {
		return orNotFound(err)
	}

	update := bson.M{
		"$set": bson.M{
			"exerciseId":      we.ExerciseID,
			"order":           we.Order,
			"sets":            we.Sets,
			"recommendedReps": we.RecommendedReps,
			"restSeconds":     we.RestSeconds,
			"useDefaultRest":  we.UseDefaultRest,
			"updatedAt":       now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stored domain.WorkoutExercise
	if err := r.exercises().FindOneAndUpdate(ctx, bson.M{"_id": we.ID}, update, opts).Decode(&stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return notFound(err)
	}
	*we = stored
	return nil
}

// DeleteExercise removes a template exercise and detaches executions planned from it.
func (r *mongoWorkoutRepository) DeleteExercise(ctx context.Context, id string) error {
	result, err := r.exercises().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	_, err = r.db.Collection(executionExerciseCollectionName).UpdateMany(
		ctx,
		bson.M{"workoutExerciseId": id},
		bson.M{"$unset": bson.M{"workoutExerciseId": ""}},
	)
	return err
}

// orNotFound maps a failed existence check: a real error passes through, a miss becomes ErrNotFound.
func orNotFound(err error) error {
	if err != nil {
		return err
	}
	return repository.ErrNotFound
}
