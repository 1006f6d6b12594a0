package domain

import "time"

// GoalKind is what a goal tracks.
type GoalKind string

const (
	GoalKindWorkouts GoalKind = "workouts" // number of executions
	GoalKindWeight   GoalKind = "weight"   // body weight
	GoalKindLoad     GoalKind = "load"     // weight lifted
)

// Valid reports whether k is a known goal kind.
func (k GoalKind) Valid() bool {
	switch k {
	case GoalKindWorkouts, GoalKindWeight, GoalKindLoad:
		return true
	}
	return false
}

// Goal is a personal target tracked by its owner.
type Goal struct {
	ID           string     `bson:"_id" json:"id"`
	OwnerID      string     `bson:"ownerId" json:"ownerId"`
	Kind         GoalKind   `bson:"kind" json:"kind"`
	TargetValue  float64    `bson:"targetValue" json:"targetValue"`
	CurrentValue float64    `bson:"currentValue" json:"currentValue"`
	StartDate    time.Time  `bson:"startDate" json:"startDate"`
	EndDate      *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Active       bool       `bson:"active" json:"active"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the goal.
func (g *Goal) IsOwnedBy(userID string) bool {
	return g.OwnerID == userID
}

// Progress returns CurrentValue / TargetValue clamped to [0, 1].
func (g *Goal) Progress() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	p := g.CurrentValue / g.TargetValue
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// UserStats holds the trivial aggregate counts of the stats summary.
type UserStats struct {
	Workouts          int `json:"workouts"`
	Executions        int `json:"executions"`
	ExecutionsLast7d  int `json:"executionsLast7d"`
	ExecutionsLast30d int `json:"executionsLast30d"`
	ActiveGoals       int `json:"activeGoals"`
	// TotalMinutes sums the recorded durations of all executions.
	TotalMinutes int `json:"totalMinutes"`
	// ActiveDays counts distinct UTC calendar days with at least one execution.
	ActiveDays int `json:"activeDays"`
}

// WeightEntry is one body weight snapshot taken when an execution was logged.
type WeightEntry struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}
