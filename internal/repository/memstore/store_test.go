package memstore

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWorkout(t *testing.T, s *Store) (*domain.User, *domain.Exercise, *domain.Workout) {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, s.Users().Create(ctx, user))

	exercise := &domain.Exercise{Name: "Squat", MuscleGroup: "Legs", Public: true}
	require.NoError(t, s.Exercises().Create(ctx, exercise))

	workout := &domain.Workout{OwnerID: user.ID, Name: "Leg day", DefaultRestSeconds: 90}
	require.NoError(t, s.Workouts().Create(ctx, workout))
	require.NoError(t, s.Workouts().AddExercise(ctx, &domain.WorkoutExercise{
		WorkoutID: workout.ID, ExerciseID: exercise.ID, Order: 1, Sets: 3, RecommendedReps: "8-12",
	}))
	return user, exercise, workout
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &domain.User{Email: "a@b.c"}))
	err := s.Users().Create(ctx, &domain.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _, workout := seedWorkout(t, s)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		ex := &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID}
		if err := tx.Executions().Create(ctx, ex); err != nil {
			return err
		}
		// nested transactions join the outer one
		return tx.WithTx(ctx, func(context.Context, repository.Store) error { return boom })
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: user.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithTx_UncommittedRowsAreInvisible(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _, workout := seedWorkout(t, s)

	err := s.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		ex := &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID}
		require.NoError(t, tx.Executions().Create(ctx, ex))

		inside, err := tx.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, inside)

		outside, err := s.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: user.ID})
		require.NoError(t, err)
		assert.Zero(t, outside)
		return nil
	})
	require.NoError(t, err)

	n, err := s.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWithTx_RollbackKeepsOutsideWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _, workout := seedWorkout(t, s)

	done := make(chan error, 1)
	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		require.NoError(t, tx.Executions().Create(ctx, &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID}))
		// a concurrent request registering a user while the transaction runs
		go func() {
			done <- s.Users().Create(context.Background(), &domain.User{Name: "Bo", Email: "bo@example.com"})
		}()
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-done)

	_, err = s.Users().GetByEmail(ctx, "bo@example.com")
	assert.NoError(t, err)
	n, err := s.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: user.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExercises_DeleteInUse(t *testing.T) {
	s := New()
	_, exercise, _ := seedWorkout(t, s)

	err := s.Exercises().Delete(context.Background(), exercise.ID)
	assert.ErrorIs(t, err, repository.ErrInUse)
}

func TestExercises_ListVisibilityAndFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := "owner-1"

	require.NoError(t, s.Exercises().Create(ctx, &domain.Exercise{Name: "Bench Press", MuscleGroup: "Chest", Public: true}))
	require.NoError(t, s.Exercises().Create(ctx, &domain.Exercise{Name: "Secret Press", MuscleGroup: "Chest", OwnerID: &owner}))
	require.NoError(t, s.Exercises().Create(ctx, &domain.Exercise{Name: "Row", MuscleGroup: "Back", Public: true}))

	got, err := s.Exercises().List(ctx, repository.ExerciseFilter{RequesterID: "someone-else", MuscleGroup: "chest"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bench Press", got[0].Name)

	got, err = s.Exercises().List(ctx, repository.ExerciseFilter{RequesterID: owner, Name: "press"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Exercises().List(ctx, repository.ExerciseFilter{RequesterID: owner, Page: repository.Page{Skip: 5}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWorkouts_DeleteCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, exercise, workout := seedWorkout(t, s)

	ex := &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID}
	require.NoError(t, s.Executions().Create(ctx, ex))
	ee := &domain.ExecutionExercise{ExecutionID: ex.ID, ExerciseID: exercise.ID, Order: 1}
	require.NoError(t, s.Executions().CreateExercise(ctx, ee))
	require.NoError(t, s.Executions().CreateSet(ctx, &domain.ExecutionSet{ExecutionExerciseID: ee.ID, Order: 1}))

	require.NoError(t, s.Workouts().Delete(ctx, workout.ID))

	_, err := s.Executions().GetByID(ctx, ex.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, s.d.sets)
	assert.Empty(t, s.d.workoutExercises)

	// the exercise is free again once nothing references it
	assert.NoError(t, s.Exercises().Delete(ctx, exercise.ID))
}

func TestExecutions_TreeIsOrdered(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, exercise, workout := seedWorkout(t, s)

	ex := &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID}
	require.NoError(t, s.Executions().Create(ctx, ex))
	for _, order := range []int{2, 1} {
		ee := &domain.ExecutionExercise{ExecutionID: ex.ID, ExerciseID: exercise.ID, Order: order}
		require.NoError(t, s.Executions().CreateExercise(ctx, ee))
		for _, setOrder := range []int{3, 1, 2} {
			require.NoError(t, s.Executions().CreateSet(ctx, &domain.ExecutionSet{ExecutionExerciseID: ee.ID, Order: setOrder}))
		}
	}

	got, err := s.Executions().GetByID(ctx, ex.ID)
	require.NoError(t, err)
	require.Len(t, got.Exercises, 2)
	assert.Equal(t, 1, got.Exercises[0].Order)
	assert.Equal(t, 2, got.Exercises[1].Order)
	for _, e := range got.Exercises {
		require.Len(t, e.Sets, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{e.Sets[0].Order, e.Sets[1].Order, e.Sets[2].Order})
	}
}

func TestWorkouts_OrderIsUniquePerWorkout(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, exercise, workout := seedWorkout(t, s)

	err := s.Workouts().AddExercise(ctx, &domain.WorkoutExercise{WorkoutID: workout.ID, ExerciseID: exercise.ID, Order: 1, Sets: 1})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	second := &domain.WorkoutExercise{WorkoutID: workout.ID, ExerciseID: exercise.ID, Order: 2, Sets: 1}
	require.NoError(t, s.Workouts().AddExercise(ctx, second))
	second.Order = 1
	assert.ErrorIs(t, s.Workouts().UpdateExercise(ctx, second), repository.ErrDuplicate)

	// the same order in another template is fine
	other := &domain.Workout{OwnerID: user.ID, Name: "Other"}
	require.NoError(t, s.Workouts().Create(ctx, other))
	require.NoError(t, s.Workouts().AddExercise(ctx, &domain.WorkoutExercise{WorkoutID: other.ID, ExerciseID: exercise.ID, Order: 1, Sets: 1}))
}

func TestUsers_DeleteCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _, workout := seedWorkout(t, s)

	public := &domain.Exercise{Name: "Shared row", OwnerID: &user.ID, Public: true}
	require.NoError(t, s.Exercises().Create(ctx, public))
	private := &domain.Exercise{Name: "Secret curl", OwnerID: &user.ID}
	require.NoError(t, s.Exercises().Create(ctx, private))
	require.NoError(t, s.Executions().Create(ctx, &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID}))
	require.NoError(t, s.Goals().Create(ctx, &domain.Goal{OwnerID: user.ID, Kind: domain.GoalKindWorkouts, TargetValue: 3}))

	require.NoError(t, s.Users().Delete(ctx, user.ID))
	assert.ErrorIs(t, s.Users().Delete(ctx, user.ID), repository.ErrNotFound)

	_, err := s.Workouts().GetByID(ctx, workout.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Exercises().GetByID(ctx, private.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	kept, err := s.Exercises().GetByID(ctx, public.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.OwnerID)

	history, err := s.Executions().History(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	n, err := s.Goals().Count(ctx, repository.GoalFilter{OwnerID: user.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExecutions_HistoryOldestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, _, workout := seedWorkout(t, s)

	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	for _, days := range []int{3, 1, 2} {
		require.NoError(t, s.Executions().Create(ctx, &domain.Execution{
			WorkoutID: workout.ID, OwnerID: user.ID, StartedAt: base.AddDate(0, 0, days),
		}))
	}

	history, err := s.Executions().History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, e := range history {
		assert.Equal(t, base.AddDate(0, 0, i+1), e.StartedAt)
	}
}
