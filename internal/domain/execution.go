package domain

import "time"

// Execution is one dated performance of a template.
type Execution struct {
	ID              string              `bson:"_id" json:"id"`
	WorkoutID       string              `bson:"workoutId" json:"workoutId"`
	OwnerID         string              `bson:"ownerId" json:"ownerId"`
	StartedAt       time.Time           `bson:"startedAt" json:"startedAt"`
	FinishedAt      *time.Time          `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
	DurationMinutes *int                `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	BodyWeight      *float64            `bson:"bodyWeight,omitempty" json:"bodyWeight,omitempty"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Exercises       []ExecutionExercise `bson:"-" json:"exercises"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ExecutionExercise records one exercise performed during an execution.
// WorkoutExerciseID is nil for exercises added ad hoc.
type ExecutionExercise struct {
	ID                string         `bson:"_id" json:"id"`
	ExecutionID       string         `bson:"executionId" json:"executionId"`
	ExerciseID        string         `bson:"exerciseId" json:"exerciseId"`
	WorkoutExerciseID *string        `bson:"workoutExerciseId,omitempty" json:"workoutExerciseId,omitempty"`
	Order             int            `bson:"order" json:"order"`
	Notes             string         `bson:"notes,omitempty" json:"notes,omitempty"`
	Sets              []ExecutionSet `bson:"-" json:"sets"`
	CreatedAt         time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// ExecutionSet is a single set of an executed exercise.
type ExecutionSet struct {
	ID                  string    `bson:"_id" json:"id"`
	ExecutionExerciseID string    `bson:"executionExerciseId" json:"executionExerciseId"`
	Order               int       `bson:"order" json:"order"`
	Reps                *int      `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight              *float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	RestSeconds         *int      `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Completed           bool      `bson:"completed" json:"completed"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the execution.
func (e *Execution) IsOwnedBy(userID string) bool {
	return e.OwnerID == userID
}

// IsFinished reports whether the execution has an end time.
func (e *Execution) IsFinished() bool {
	return e.FinishedAt != nil
}

// Minutes is the recorded duration, or the whole minutes between start and finish
// when none was recorded. Unfinished executions without a duration count as zero.
func (e *Execution) Minutes() int {
	switch {
	case e.DurationMinutes != nil:
		return *e.DurationMinutes
	case e.FinishedAt != nil && e.FinishedAt.After(e.StartedAt):
		return int(e.FinishedAt.Sub(e.StartedAt) / time.Minute)
	}
	return 0
}

// FindExercise returns the index of the exercise matching (exerciseID, order), or -1.
func (e *Execution) FindExercise(exerciseID string, order int) int {
	for i := range e.Exercises {
		if e.Exercises[i].ExerciseID == exerciseID && e.Exercises[i].Order == order {
			return i
		}
	}
	return -1
}

// ExecutionSummary holds the trivial per-execution aggregates shown in history views.
type ExecutionSummary struct {
	Exercises     int     `json:"exercises"`
	Sets          int     `json:"sets"`
	CompletedSets int     `json:"completedSets"`
	TotalReps     int     `json:"totalReps"`
	TotalVolume   float64 `json:"totalVolume"` // sum of reps * weight over completed sets
}

// Summarize computes the aggregates over the loaded exercise tree.
func (e *Execution) Summarize() ExecutionSummary {
	var s ExecutionSummary
	s.Exercises = len(e.Exercises)
	for _, ex := range e.Exercises {
		for _, set := range ex.Sets {
			s.Sets++
			if !set.Completed {
				continue
			}
			s.CompletedSets++
			if set.Reps == nil {
				continue
			}
			s.TotalReps += *set.Reps
			if set.Weight != nil {
				s.TotalVolume += float64(*set.Reps) * *set.Weight
			}
		}
	}
	return s
}
