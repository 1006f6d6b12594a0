package service

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"fmt"
	"time"
)

// StartExecutionInput starts an execution from a template.
type StartExecutionInput struct {
	WorkoutID  string
	BodyWeight *float64
	StartTime  *time.Time
	// Overrides is keyed by exercise id.
	Overrides map[string]ExerciseOverride
}

// ExerciseOverride replaces the planned values of the first len(Sets) sets of an exercise.
type ExerciseOverride struct {
	Sets []SetOverride
}

type SetOverride struct {
	Reps        *int
	Weight      *float64
	RestSeconds *int
}

// expandSets builds the planned sets of one template exercise. Position i (1-based)
// takes the override set config at i when one exists, otherwise reps come from the
// recommended-reps expression and weight stays unset. Rest falls back to the
// exercise's effective rest whenever the override leaves it out.
func expandSets(workout *domain.Workout, we domain.WorkoutExercise, override *ExerciseOverride) []domain.ExecutionSet {
	rest := we.EffectiveRest(workout)
	sets := make([]domain.ExecutionSet, 0, we.Sets)
	for i := 1; i <= we.Sets; i++ {
		set := domain.ExecutionSet{Order: i}
		if override != nil && i <= len(override.Sets) {
			cfg := override.Sets[i-1]
			set.Reps = copyPtr(cfg.Reps)
			set.Weight = copyPtr(cfg.Weight)
			set.RestSeconds = copyPtr(cfg.RestSeconds)
		} else {
			set.Reps = domain.ParseRecommendedReps(we.RecommendedReps)
		}
		if set.RestSeconds == nil {
			set.RestSeconds = copyPtr(&rest)
		}
		sets = append(sets, set)
	}
	return sets
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// expand writes the execution row plus one exercise per template exercise and
// its planned sets. It must run inside a transaction.
func expand(ctx context.Context, tx repository.Store, workout *domain.Workout, execution *domain.Execution, overrides map[string]ExerciseOverride) error {
	if err := tx.Executions().Create(ctx, execution); err != nil {
		return fmt.Errorf("create execution: %w", err)
	}

	execution.Exercises = make([]domain.ExecutionExercise, 0, len(workout.Exercises))
	for _, we := range workout.Exercises {
		templateID := we.ID
		ee := domain.ExecutionExercise{
			ExecutionID:       execution.ID,
			ExerciseID:        we.ExerciseID,
			WorkoutExerciseID: &templateID,
			Order:             we.Order,
		}
		if err := tx.Executions().CreateExercise(ctx, &ee); err != nil {
			return fmt.Errorf("create execution exercise: %w", err)
		}

		var override *ExerciseOverride
		if o, ok := overrides[we.ExerciseID]; ok {
			override = &o
		}
		ee.Sets = expandSets(workout, we, override)
		for i := range ee.Sets {
			ee.Sets[i].ExecutionExerciseID = ee.ID
			if err := tx.Executions().CreateSet(ctx, &ee.Sets[i]); err != nil {
				return fmt.Errorf("create execution set: %w", err)
			}
		}
		execution.Exercises = append(execution.Exercises, ee)
	}
	return nil
}

// Start expands a template into a new execution owned by userID.
func (s *executionService) Start(ctx context.Context, userID string, in StartExecutionInput) (*domain.Execution, error) {
	if in.WorkoutID == "" {
		return nil, validationError("workoutId is required")
	}
	if err := validateBody(in.BodyWeight, nil, nil); err != nil {
		return nil, err
	}
	for exerciseID, o := range in.Overrides {
		for _, cfg := range o.Sets {
			if err := validateSetValues(cfg.Reps, cfg.Weight, cfg.RestSeconds); err != nil {
				return nil, fmt.Errorf("override for exercise %s: %w", exerciseID, err)
			}
		}
	}

	startedAt := s.now()
	if in.StartTime != nil {
		startedAt = in.StartTime.UTC()
	}
	execution := &domain.Execution{
		WorkoutID:  in.WorkoutID,
		OwnerID:    userID,
		StartedAt:  startedAt,
		BodyWeight: copyPtr(in.BodyWeight),
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		workout, err := ownedWorkout(ctx, tx, userID, in.WorkoutID)
		if err != nil {
			return err
		}
		return expand(ctx, tx, workout, execution, in.Overrides)
	})
	if err != nil {
		return nil, err
	}
	return execution, nil
}
