package domain

import "time"

const (
	DefaultRestSeconds = 60
	DefaultSetCount    = 3
)

// Workout is a reusable template authored by its owner.
// Exercises are stored separately and loaded by the repository.
type Workout struct {
	ID                 string            `bson:"_id" json:"id"`
	OwnerID            string            `bson:"ownerId" json:"ownerId"`
	Name               string            `bson:"name" json:"name"`
	Description        string            `bson:"description,omitempty" json:"description,omitempty"`
	DefaultRestSeconds int               `bson:"defaultRestSeconds" json:"defaultRestSeconds"`
	Exercises          []WorkoutExercise `bson:"-" json:"exercises"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise is one planned entry of a template. Order is unique per template.
type WorkoutExercise struct {
	ID              string    `bson:"_id" json:"id"`
	WorkoutID       string    `bson:"workoutId" json:"workoutId"`
	ExerciseID      string    `bson:"exerciseId" json:"exerciseId"`
	Order           int       `bson:"order" json:"order"`
	Sets            int       `bson:"sets" json:"sets"`
	RecommendedReps string    `bson:"recommendedReps,omitempty" json:"recommendedReps,omitempty"` // "10", "8-12", free text
	RestSeconds     int       `bson:"restSeconds" json:"restSeconds"`
	UseDefaultRest  bool      `bson:"useDefaultRest" json:"useDefaultRest"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveRest returns the rest duration in seconds that applies to we,
// deferring to the template default when UseDefaultRest is set.
func (we WorkoutExercise) EffectiveRest(w *Workout) int {
	if we.UseDefaultRest && w != nil {
		return w.DefaultRestSeconds
	}
	return we.RestSeconds
}

// IsOwnedBy reports whether userID owns the template.
func (w *Workout) IsOwnedBy(userID string) bool {
	return w.OwnerID == userID
}
