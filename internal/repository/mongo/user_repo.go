package mongo

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// Create inserts a new user. The unique email index turns duplicates into repository.ErrDuplicate.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	newID(&user.ID)
	t := now()
	user.CreatedAt = t
	user.UpdatedAt = t

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByEmail retrieves a user by their (already normalized) email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Update replaces the stored document so cleared optional fields disappear.
func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the user and everything they own. Public exercises stay in the
// catalog with the owner unset. Callers should run it inside WithTx.
func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	if ok, err := exists(ctx, r.collection, id); err != nil || !ok {
		return orNotFound(err)
	}

	exercises := r.db.Collection(exerciseCollectionName)
	private, err := documentIDs(ctx, exercises, bson.M{"ownerId": id, "public": false})
	if err != nil {
		return err
	}
	workoutIDs, err := documentIDs(ctx, r.db.Collection(workoutCollectionName), bson.M{"ownerId": id})
	if err != nil {
		return err
	}
	executionIDs, err := documentIDs(ctx, r.db.Collection(executionCollectionName), bson.M{"ownerId": id})
	if err != nil {
		return err
	}

	if len(private) > 0 {
		refs := map[string]bson.M{
			workoutExerciseCollectionName:   {"exerciseId": bson.M{"$in": private}, "workoutId": bson.M{"$nin": workoutIDs}},
			executionExerciseCollectionName: {"exerciseId": bson.M{"$in": private}, "executionId": bson.M{"$nin": executionIDs}},
		}
		for name, filter := range refs {
			n, err := r.db.Collection(name).CountDocuments(ctx, filter)
			if err != nil {
				return err
			}
			if n > 0 {
				return repository.ErrInUse
			}
		}
	}

	executions := &mongoExecutionRepository{db: r.db, collection: r.db.Collection(executionCollectionName)}
	if err := executions.deleteWhere(ctx, bson.M{"ownerId": id}); err != nil {
		return err
	}
	if _, err := r.db.Collection(workoutExerciseCollectionName).DeleteMany(ctx, bson.M{"workoutId": bson.M{"$in": workoutIDs}}); err != nil {
		return err
	}
	if _, err := r.db.Collection(workoutCollectionName).DeleteMany(ctx, bson.M{"ownerId": id}); err != nil {
		return err
	}
	if _, err := r.db.Collection(goalCollectionName).DeleteMany(ctx, bson.M{"ownerId": id}); err != nil {
		return err
	}
	if _, err := exercises.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": private}}); err != nil {
		return err
	}
	if _, err := exercises.UpdateMany(
		ctx,
		bson.M{"ownerId": id},
		bson.M{"$unset": bson.M{"ownerId": ""}, "$set": bson.M{"updatedAt": now()}},
	); err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// documentIDs returns the _id of every document matching filter.
func documentIDs(ctx context.Context, collection *mongo.Collection, filter bson.M) ([]string, error) {
	cursor, err := collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out, nil
}
