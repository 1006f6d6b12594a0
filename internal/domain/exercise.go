// internal/domain/exercise.go
package domain

import "time"

// Difficulty tier of an exercise.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Exercise represents a single exercise definition in the catalog.
// OwnerID is nil for ownerless public catalog entries.
type Exercise struct {
	ID           string     `bson:"_id" json:"id"`
	OwnerID      *string    `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	Name         string     `bson:"name" json:"name"`
	MuscleGroup  string     `bson:"muscleGroup" json:"muscleGroup"`
	Equipment    string     `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Difficulty   Difficulty `bson:"difficulty" json:"difficulty"`
	Description  string     `bson:"description,omitempty" json:"description,omitempty"`
	Instructions string     `bson:"instructions,omitempty" json:"instructions,omitempty"`
	ImageURL     string     `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Public       bool       `bson:"public" json:"public"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the exercise.
func (e *Exercise) IsOwnedBy(userID string) bool {
	return e.OwnerID != nil && *e.OwnerID == userID
}

// VisibleTo reports whether userID may read the exercise:
// public entries are readable by everyone, private ones only by their owner.
func (e *Exercise) VisibleTo(userID string) bool {
	return e.Public || e.IsOwnedBy(userID)
}
