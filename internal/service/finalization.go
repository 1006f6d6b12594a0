package service

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"fmt"
	"time"
)

// ExecutionUpdate is a partial update of an execution. Absent fields are left
// alone, a present null clears a nullable field.
type ExecutionUpdate struct {
	FinishedAt      domain.Optional[time.Time]
	DurationMinutes domain.Optional[int]
	BodyWeight      domain.Optional[float64]
	Notes           domain.Optional[string]
	Exercises       domain.Optional[[]ExecutionExerciseUpdate]
}

// ExecutionExerciseUpdate targets the execution exercise with the same exercise id and order.
type ExecutionExerciseUpdate struct {
	ExerciseID string
	Order      int
	Notes      domain.Optional[string]
	// Sets, when present, replaces every set of the exercise.
	Sets domain.Optional[[]SetInput]
}

type SetInput struct {
	Order       int
	Reps        *int
	Weight      *float64
	RestSeconds *int
	Completed   bool
}

func validateSetValues(reps *int, weight *float64, rest *int) error {
	if reps != nil && *reps < 0 {
		return validationError("reps cannot be negative")
	}
	if weight != nil && *weight < 0 {
		return validationError("weight cannot be negative")
	}
	if rest != nil && *rest < 0 {
		return validationError("restSeconds cannot be negative")
	}
	return nil
}

func validateSets(sets []SetInput) error {
	for _, set := range sets {
		if set.Order < 0 {
			return validationError("set order cannot be negative")
		}
		if err := validateSetValues(set.Reps, set.Weight, set.RestSeconds); err != nil {
			return err
		}
	}
	return nil
}

func (u ExecutionUpdate) validate() error {
	if d, ok := u.DurationMinutes.Get(); ok && d < 0 {
		return validationError("durationMinutes cannot be negative")
	}
	if w, ok := u.BodyWeight.Get(); ok && w <= 0 {
		return validationError("bodyWeight must be positive")
	}
	exercises, _ := u.Exercises.Get()
	for _, ex := range exercises {
		if ex.ExerciseID == "" {
			return validationError("exerciseId is required for every exercise")
		}
		if sets, ok := ex.Sets.Get(); ok {
			if err := validateSets(sets); err != nil {
				return err
			}
		}
	}
	return nil
}

// replaceSets drops every set of the execution exercise and writes the given ones.
func replaceSets(ctx context.Context, tx repository.Store, ee *domain.ExecutionExercise, in []SetInput) error {
	if err := tx.Executions().DeleteSets(ctx, ee.ID); err != nil {
		return fmt.Errorf("delete sets: %w", err)
	}
	ee.Sets = make([]domain.ExecutionSet, 0, len(in))
	for i, setIn := range in {
		set := domain.ExecutionSet{
			ExecutionExerciseID: ee.ID,
			Order:               setIn.Order,
			Reps:                copyPtr(setIn.Reps),
			Weight:              copyPtr(setIn.Weight),
			RestSeconds:         copyPtr(setIn.RestSeconds),
			Completed:           setIn.Completed,
		}
		if set.Order == 0 {
			set.Order = i + 1
		}
		if err := tx.Executions().CreateSet(ctx, &set); err != nil {
			return fmt.Errorf("create set: %w", err)
		}
		ee.Sets = append(ee.Sets, set)
	}
	return nil
}

// mergeExercise applies one exercise update to the execution tree. Updates are
// matched by (exercise id, order); an update that matches nothing becomes an
// ad-hoc exercise without a template back-reference.
func mergeExercise(ctx context.Context, tx repository.Store, userID string, execution *domain.Execution, in ExecutionExerciseUpdate) error {
	idx := execution.FindExercise(in.ExerciseID, in.Order)
	if idx < 0 {
		if _, err := visibleExercise(ctx, tx, userID, in.ExerciseID); err != nil {
			return err
		}
		ee := domain.ExecutionExercise{
			ExecutionID: execution.ID,
			ExerciseID:  in.ExerciseID,
			Order:       in.Order,
			Sets:        []domain.ExecutionSet{},
		}
		in.Notes.ApplyValue(&ee.Notes)
		if err := tx.Executions().CreateExercise(ctx, &ee); err != nil {
			return fmt.Errorf("create execution exercise: %w", err)
		}
		execution.Exercises = append(execution.Exercises, ee)
		idx = len(execution.Exercises) - 1
	} else if in.Notes.Set {
		ee := &execution.Exercises[idx]
		ee.Notes, _ = in.Notes.Get()
		if err := tx.Executions().UpdateExercise(ctx, ee); err != nil {
			return fmt.Errorf("update execution exercise: %w", err)
		}
	}

	if sets, ok := in.Sets.Get(); ok {
		return replaceSets(ctx, tx, &execution.Exercises[idx], sets)
	}
	return nil
}

// Finalize merges the client's record of a session into the execution. It may be
// called more than once; the sets of each listed exercise are replaced every time.
func (s *executionService) Finalize(ctx context.Context, userID, executionID string, in ExecutionUpdate) (*domain.Execution, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result *domain.Execution
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		execution, err := ownedExecution(ctx, tx, userID, executionID)
		if err != nil {
			return err
		}

		if in.FinishedAt.Set {
			execution.FinishedAt = nil
			if t, ok := in.FinishedAt.Get(); ok {
				t = t.UTC()
				if t.Before(execution.StartedAt) {
					return validationError("finishedAt cannot be before startedAt")
				}
				execution.FinishedAt = &t
			}
		}
		in.DurationMinutes.Apply(&execution.DurationMinutes)
		in.BodyWeight.Apply(&execution.BodyWeight)
		if in.Notes.Set {
			execution.Notes, _ = in.Notes.Get()
		}
		if err := tx.Executions().Update(ctx, execution); err != nil {
			return fmt.Errorf("update execution: %w", err)
		}

		exercises, _ := in.Exercises.Get()
		for _, exIn := range exercises {
			if err := mergeExercise(ctx, tx, userID, execution, exIn); err != nil {
				return err
			}
		}

		result, err = tx.Executions().GetByID(ctx, executionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
