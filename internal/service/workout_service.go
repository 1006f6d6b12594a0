package service

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"strings"
)

type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID string, in WorkoutInput) (*domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID string) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, userID string, page repository.Page) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, userID, workoutID string, in WorkoutUpdate) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID string) error

	AddExercise(ctx context.Context, userID, workoutID string, in WorkoutExerciseInput) (*domain.WorkoutExercise, error)
	UpdateExercise(ctx context.Context, userID, workoutID, workoutExerciseID string, in WorkoutExerciseUpdate) (*domain.WorkoutExercise, error)
	RemoveExercise(ctx context.Context, userID, workoutID, workoutExerciseID string) error
}

type WorkoutInput struct {
	Name               string
	Description        string
	DefaultRestSeconds *int
	Exercises          []WorkoutExerciseInput
}

type WorkoutUpdate struct {
	Name               domain.Optional[string]
	Description        domain.Optional[string]
	DefaultRestSeconds domain.Optional[int]
}

// WorkoutExerciseInput plans one exercise. Nil fields take the defaults.
type WorkoutExerciseInput struct {
	ExerciseID      string
	Order           int
	Sets            *int
	RecommendedReps string
	RestSeconds     *int
	UseDefaultRest  *bool
}

type WorkoutExerciseUpdate struct {
	ExerciseID      domain.Optional[string]
	Order           domain.Optional[int]
	Sets            domain.Optional[int]
	RecommendedReps domain.Optional[string]
	RestSeconds     domain.Optional[int]
	UseDefaultRest  domain.Optional[bool]
}

type workoutService struct {
	store repository.Store
}

func NewWorkoutService(store repository.Store) WorkoutService {
	return &workoutService{store: store}
}

func (s *workoutService) CreateWorkout(ctx context.Context, userID string, in WorkoutInput) (*domain.Workout, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("workout name is required")
	}
	workout := &domain.Workout{
		OwnerID:            userID,
		Name:               name,
		Description:        in.Description,
		DefaultRestSeconds: domain.DefaultRestSeconds,
	}
	if in.DefaultRestSeconds != nil {
		if *in.DefaultRestSeconds < 0 {
			return nil, validationError("defaultRestSeconds cannot be negative")
		}
		workout.DefaultRestSeconds = *in.DefaultRestSeconds
	}

	planned := make([]domain.WorkoutExercise, 0, len(in.Exercises))
	seen := map[int]bool{}
	for i, exIn := range in.Exercises {
		we, err := newWorkoutExercise(exIn)
		if err != nil {
			return nil, err
		}
		if we.Order == 0 {
			we.Order = i + 1
		}
		if seen[we.Order] {
			return nil, validationError("duplicate exercise order %d", we.Order)
		}
		seen[we.Order] = true
		planned = append(planned, *we)
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		for _, we := range planned {
			if _, err := visibleExercise(ctx, tx, userID, we.ExerciseID); err != nil {
				return err
			}
		}
		if err := tx.Workouts().Create(ctx, workout); err != nil {
			return err
		}
		workout.Exercises = make([]domain.WorkoutExercise, 0, len(planned))
		for _, we := range planned {
			we.WorkoutID = workout.ID
			if err := tx.Workouts().AddExercise(ctx, &we); err != nil {
				return err
			}
			workout.Exercises = append(workout.Exercises, we)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func newWorkoutExercise(in WorkoutExerciseInput) (*domain.WorkoutExercise, error) {
	if in.ExerciseID == "" {
		return nil, validationError("exerciseId is required")
	}
	we := &domain.WorkoutExercise{
		ExerciseID:      in.ExerciseID,
		Order:           in.Order,
		Sets:            domain.DefaultSetCount,
		RecommendedReps: strings.TrimSpace(in.RecommendedReps),
		RestSeconds:     domain.DefaultRestSeconds,
		UseDefaultRest:  true,
	}
	if in.Sets != nil {
		we.Sets = *in.Sets
	}
	if in.RestSeconds != nil {
		we.RestSeconds = *in.RestSeconds
	}
	if in.UseDefaultRest != nil {
		we.UseDefaultRest = *in.UseDefaultRest
	}
	if err := validateWorkoutExercise(we); err != nil {
		return nil, err
	}
	return we, nil
}

func validateWorkoutExercise(we *domain.WorkoutExercise) error {
	if we.Order < 0 {
		return validationError("order cannot be negative")
	}
	if we.Sets < 1 {
		return validationError("sets must be at least 1")
	}
	if we.RestSeconds < 0 {
		return validationError("restSeconds cannot be negative")
	}
	return nil
}

// ownedWorkout loads a template; existence is checked before ownership.
func ownedWorkout(ctx context.Context, store repository.Store, userID, workoutID string) (*domain.Workout, error) {
	workout, err := store.Workouts().GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if !workout.IsOwnedBy(userID) {
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	return ownedWorkout(ctx, s.store, userID, workoutID)
}

func (s *workoutService) ListWorkouts(ctx context.Context, userID string, page repository.Page) ([]domain.Workout, error) {
	return s.store.Workouts().ListByOwner(ctx, userID, page)
}

func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID string, in WorkoutUpdate) (*domain.Workout, error) {
	workout, err := ownedWorkout(ctx, s.store, userID, workoutID)
	if err != nil {
		return nil, err
	}

	if in.Name.Set {
		name, _ := in.Name.Get()
		if strings.TrimSpace(name) == "" {
			return nil, validationError("workout name cannot be empty")
		}
		workout.Name = strings.TrimSpace(name)
	}
	if in.Description.Set {
		workout.Description, _ = in.Description.Get()
	}
	if in.DefaultRestSeconds.Set {
		rest, ok := in.DefaultRestSeconds.Get()
		if !ok {
			rest = domain.DefaultRestSeconds
		}
		if rest < 0 {
			return nil, validationError("defaultRestSeconds cannot be negative")
		}
		workout.DefaultRestSeconds = rest
	}

	if err := s.store.Workouts().Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// DeleteWorkout removes the template together with its executions.
func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := ownedWorkout(ctx, tx, userID, workoutID); err != nil {
			return err
		}
		if err := tx.Workouts().Delete(ctx, workoutID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWorkoutNotFound
			}
			return err
		}
		return nil
	})
}

func checkOrderFree(workout *domain.Workout, order int, exceptID string) error {
	for _, we := range workout.Exercises {
		if we.Order == order && we.ID != exceptID {
			return validationError("order %d is already used in this workout", order)
		}
	}
	return nil
}

// orderConflict reports a unique (workout, order) violation raised by the store,
// which happens when a concurrent request took the order after checkOrderFree.
func orderConflict(err error, order int) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return validationError("order %d is already used in this workout", order)
	}
	return err
}

func (s *workoutService) AddExercise(ctx context.Context, userID, workoutID string, in WorkoutExerciseInput) (*domain.WorkoutExercise, error) {
	we, err := newWorkoutExercise(in)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		workout, err := ownedWorkout(ctx, tx, userID, workoutID)
		if err != nil {
			return err
		}
		if we.Order == 0 {
			for _, existing := range workout.Exercises {
				if existing.Order >= we.Order {
					we.Order = existing.Order
				}
			}
			we.Order++
		}
		if err := checkOrderFree(workout, we.Order, ""); err != nil {
			return err
		}
		if _, err := visibleExercise(ctx, tx, userID, we.ExerciseID); err != nil {
			return err
		}
		we.WorkoutID = workoutID
		if err := tx.Workouts().AddExercise(ctx, we); err != nil {
			return orderConflict(err, we.Order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return we, nil
}

// workoutExercise loads a planned exercise and checks it belongs to workoutID.
func workoutExercise(ctx context.Context, store repository.Store, workoutID, workoutExerciseID string) (*domain.WorkoutExercise, error) {
	we, err := store.Workouts().GetExercise(ctx, workoutExerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutExerciseNotFound
		}
		return nil, err
	}
	if we.WorkoutID != workoutID {
		return nil, ErrWorkoutExerciseMismatch
	}
	return we, nil
}

func (s *workoutService) UpdateExercise(ctx context.Context, userID, workoutID, workoutExerciseID string, in WorkoutExerciseUpdate) (*domain.WorkoutExercise, error) {
	var updated *domain.WorkoutExercise
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		workout, err := ownedWorkout(ctx, tx, userID, workoutID)
		if err != nil {
			return err
		}
		we, err := workoutExercise(ctx, tx, workoutID, workoutExerciseID)
		if err != nil {
			return err
		}

		if id, ok := in.ExerciseID.Get(); ok && id != we.ExerciseID {
			if _, err := visibleExercise(ctx, tx, userID, id); err != nil {
				return err
			}
			we.ExerciseID = id
		} else if in.ExerciseID.Set && !ok {
			return validationError("exerciseId cannot be null")
		}
		if order, ok := in.Order.Get(); ok {
			if err := checkOrderFree(workout, order, we.ID); err != nil {
				return err
			}
			we.Order = order
		}
		in.Sets.ApplyValue(&we.Sets)
		in.RestSeconds.ApplyValue(&we.RestSeconds)
		in.UseDefaultRest.ApplyValue(&we.UseDefaultRest)
		if in.RecommendedReps.Set {
			reps, _ := in.RecommendedReps.Get()
			we.RecommendedReps = strings.TrimSpace(reps)
		}
		if err := validateWorkoutExercise(we); err != nil {
			return err
		}

		if err := tx.Workouts().UpdateExercise(ctx, we); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWorkoutExerciseNotFound
			}
			return orderConflict(err, we.Order)
		}
		updated = we
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *workoutService) RemoveExercise(ctx context.Context, userID, workoutID, workoutExerciseID string) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := ownedWorkout(ctx, tx, userID, workoutID); err != nil {
			return err
		}
		if _, err := workoutExercise(ctx, tx, workoutID, workoutExerciseID); err != nil {
			return err
		}
		if err := tx.Workouts().DeleteExercise(ctx, workoutExerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWorkoutExerciseNotFound
			}
			return err
		}
		return nil
	})
}
