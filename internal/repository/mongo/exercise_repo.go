package mongo

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	newID(&exercise.ID)
	t := now()
	exercise.CreatedAt = t
	exercise.UpdatedAt = t

	_, err := r.collection.InsertOne(ctx, exercise)
	return err
}

func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise); err != nil {
		return nil, notFound(err)
	}
	return &exercise, nil
}

// contains matches a case-insensitive substring; user input is quoted.
func contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// List returns the exercises visible to the requester (public or owned), sorted by name.
func (r *mongoExerciseRepository) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	query := bson.M{
		"$or": bson.A{
			bson.M{"public": true},
			bson.M{"ownerId": filter.RequesterID},
		},
	}
	if filter.MuscleGroup != "" {
		query["muscleGroup"] = contains(filter.MuscleGroup)
	}
	if filter.Equipment != "" {
		query["equipment"] = contains(filter.Equipment)
	}
	if filter.Difficulty != "" {
		query["difficulty"] = filter.Difficulty
	}
	if filter.Name != "" {
		query["name"] = contains(filter.Name)
	}

	findOptions := pageOptions(filter.Page).SetSort(bson.D{{Key: "name", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update modifies an existing exercise. The owner is never changed here.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	t := now()
	update := bson.M{
		"$set": bson.M{
			"name":         exercise.Name,
			"muscleGroup":  exercise.MuscleGroup,
			"equipment":    exercise.Equipment,
			"difficulty":   exercise.Difficulty,
			"description":  exercise.Description,
			"instructions": exercise.Instructions,
			"imageUrl":     exercise.ImageURL,
			"public":       exercise.Public,
			"updatedAt":    t,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	stored, err := r.GetByID(ctx, exercise.ID)
	if err != nil {
		return err
	}
	*exercise = *stored
	return nil
}

// Delete removes an exercise unless a template or an execution still references it.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id string) error {
	for _, name := range []string{workoutExerciseCollectionName, executionExerciseCollectionName} {
		n, err := r.db.Collection(name).CountDocuments(ctx, bson.M{"exerciseId": id})
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrInUse
		}
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
