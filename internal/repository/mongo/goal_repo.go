package mongo

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoGoalRepository struct {
	collection *mongo.Collection
}

func (r *mongoGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	newID(&goal.ID)
	t := now()
	goal.CreatedAt = t
	goal.UpdatedAt = t

	_, err := r.collection.InsertOne(ctx, goal)
	return err
}

func (r *mongoGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	var goal domain.Goal
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal); err != nil {
		return nil, notFound(err)
	}
	return &goal, nil
}

func goalQuery(filter repository.GoalFilter) bson.M {
	query := bson.M{"ownerId": filter.OwnerID}
	if filter.Active != nil {
		query["active"] = *filter.Active
	}
	return query
}

func (r *mongoGoalRepository) List(ctx context.Context, filter repository.GoalFilter) ([]domain.Goal, error) {
	findOptions := pageOptions(filter.Page).SetSort(bson.D{{Key: "startDate", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, goalQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	goals := []domain.Goal{}
	if err = cursor.All(ctx, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *mongoGoalRepository) Count(ctx context.Context, filter repository.GoalFilter) (int, error) {
	n, err := r.collection.CountDocuments(ctx, goalQuery(filter))
	return int(n), err
}

func (r *mongoGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	existing, err := r.GetByID(ctx, goal.ID)
	if err != nil {
		return err
	}
	goal.OwnerID = existing.OwnerID
	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": goal.ID}, goal)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoGoalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
