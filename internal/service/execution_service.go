package service

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"
)

type ExecutionService interface {
	// Start expands a template into a new execution with planned sets.
	Start(ctx context.Context, userID string, in StartExecutionInput) (*domain.Execution, error)
	// CreateFull stores a fully specified execution tree.
	CreateFull(ctx context.Context, userID string, in ExecutionInput) (*domain.Execution, error)
	Get(ctx context.Context, userID, executionID string) (*domain.Execution, error)
	List(ctx context.Context, userID string, filter ExecutionFilter) ([]domain.Execution, error)
	ListByWorkout(ctx context.Context, userID, workoutID string, page repository.Page) ([]domain.Execution, error)
	// Finalize merges end-of-session data into an execution.
	Finalize(ctx context.Context, userID, executionID string, in ExecutionUpdate) (*domain.Execution, error)
	Delete(ctx context.Context, userID, executionID string) error
}

type ExecutionInput struct {
	WorkoutID       string
	StartedAt       *time.Time
	FinishedAt      *time.Time
	DurationMinutes *int
	BodyWeight      *float64
	Notes           string
	Exercises       []ExecutionExerciseInput
}

type ExecutionExerciseInput struct {
	ExerciseID        string
	WorkoutExerciseID *string
	Order             int
	Notes             string
	Sets              []SetInput
}

type ExecutionFilter struct {
	From *time.Time
	To   *time.Time
	Page repository.Page
}

type executionService struct {
	store repository.Store
	now   func() time.Time
}

func NewExecutionService(store repository.Store) ExecutionService {
	return &executionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ownedExecution loads an execution tree; existence is checked before ownership.
func ownedExecution(ctx context.Context, store repository.Store, userID, executionID string) (*domain.Execution, error) {
	execution, err := store.Executions().GetByID(ctx, executionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExecutionNotFound
		}
		return nil, err
	}
	if !execution.IsOwnedBy(userID) {
		return nil, ErrExecutionAccessDenied
	}
	return execution, nil
}

func (in ExecutionInput) validate() error {
	if in.WorkoutID == "" {
		return validationError("workoutId is required")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return validationError("durationMinutes cannot be negative")
	}
	if err := validateBody(in.BodyWeight, nil, nil); err != nil {
		return err
	}
	for _, ex := range in.Exercises {
		if ex.ExerciseID == "" {
			return validationError("exerciseId is required for every exercise")
		}
		if err := validateSets(ex.Sets); err != nil {
			return err
		}
	}
	return nil
}

func (s *executionService) CreateFull(ctx context.Context, userID string, in ExecutionInput) (*domain.Execution, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	execution := &domain.Execution{
		WorkoutID:       in.WorkoutID,
		OwnerID:         userID,
		StartedAt:       s.now(),
		DurationMinutes: copyPtr(in.DurationMinutes),
		BodyWeight:      copyPtr(in.BodyWeight),
		Notes:           in.Notes,
	}
	if in.StartedAt != nil {
		execution.StartedAt = in.StartedAt.UTC()
	}
	if in.FinishedAt != nil {
		t := in.FinishedAt.UTC()
		// a missing startedAt resolves to now, so the bound applies to that as well
		if t.Before(execution.StartedAt) {
			return nil, validationError("finishedAt cannot be before startedAt")
		}
		execution.FinishedAt = &t
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := ownedWorkout(ctx, tx, userID, in.WorkoutID); err != nil {
			return err
		}
		if err := tx.Executions().Create(ctx, execution); err != nil {
			return fmt.Errorf("create execution: %w", err)
		}

		execution.Exercises = make([]domain.ExecutionExercise, 0, len(in.Exercises))
		for i, exIn := range in.Exercises {
			if _, err := visibleExercise(ctx, tx, userID, exIn.ExerciseID); err != nil {
				return err
			}
			if exIn.WorkoutExerciseID != nil {
				if _, err := workoutExercise(ctx, tx, in.WorkoutID, *exIn.WorkoutExerciseID); err != nil {
					return err
				}
			}
			ee := domain.ExecutionExercise{
				ExecutionID:       execution.ID,
				ExerciseID:        exIn.ExerciseID,
				WorkoutExerciseID: copyPtr(exIn.WorkoutExerciseID),
				Order:             exIn.Order,
				Notes:             exIn.Notes,
			}
			if ee.Order == 0 {
				ee.Order = i + 1
			}
			if err := tx.Executions().CreateExercise(ctx, &ee); err != nil {
				return fmt.Errorf("create execution exercise: %w", err)
			}
			if err := replaceSets(ctx, tx, &ee, exIn.Sets); err != nil {
				return err
			}
			execution.Exercises = append(execution.Exercises, ee)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return execution, nil
}

func (s *executionService) Get(ctx context.Context, userID, executionID string) (*domain.Execution, error) {
	return ownedExecution(ctx, s.store, userID, executionID)
}

func (s *executionService) List(ctx context.Context, userID string, filter ExecutionFilter) ([]domain.Execution, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, validationError("'to' cannot be before 'from'")
	}
	return s.store.Executions().List(ctx, repository.ExecutionFilter{
		OwnerID: userID,
		From:    filter.From,
		To:      filter.To,
		Page:    filter.Page,
	})
}

// ListByWorkout lists the executions of one template. The template must be the requester's.
func (s *executionService) ListByWorkout(ctx context.Context, userID, workoutID string, page repository.Page) ([]domain.Execution, error) {
	if _, err := ownedWorkout(ctx, s.store, userID, workoutID); err != nil {
		return nil, err
	}
	return s.store.Executions().List(ctx, repository.ExecutionFilter{
		OwnerID:   userID,
		WorkoutID: workoutID,
		Page:      page,
	})
}

func (s *executionService) Delete(ctx context.Context, userID, executionID string) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := ownedExecution(ctx, tx, userID, executionID); err != nil {
			return err
		}
		if err := tx.Executions().Delete(ctx, executionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrExecutionNotFound
			}
			return err
		}
		return nil
	})
}
