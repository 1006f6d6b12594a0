package postgres

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite runs against a throwaway postgres container.
// Enable it with FITTRACKER_DOCKER_TESTS=1.
type StoreTestSuite struct {
	suite.Suite

	dockerPool *dockertest.Pool
	resource   *dockertest.Resource
	pool       *pgxpool.Pool
	store      *Store
}

func TestStoreTestSuite(t *testing.T) {
	if os.Getenv("FITTRACKER_DOCKER_TESTS") != "1" {
		t.Skip("set FITTRACKER_DOCKER_TESTS=1 to run postgres integration tests")
	}
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupSuite() {
	ctx := context.Background()

	var err error
	s.dockerPool, err = dockertest.NewPool("")
	s.Require().NoError(err, "create dockertest pool")
	s.Require().NoError(s.dockerPool.Client.Ping(), "ping docker")

	s.resource, err = s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=fittracker",
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	s.Require().NoError(err, "run postgres")
	_ = s.resource.Expire(120)

	dsn := fmt.Sprintf("postgres://postgres@localhost:%s/fittracker?sslmode=disable", s.resource.GetPort("5432/tcp"))
	s.pool, err = NewPool(ctx, NewPoolParams{URL: dsn})
	s.Require().NoError(err)

	s.Require().NoError(s.dockerPool.Retry(func() error {
		return s.pool.Ping(ctx)
	}), "connect to db")

	s.Require().NoError(EnsureSchema(ctx, s.pool))
	// twice, it must be idempotent
	s.Require().NoError(EnsureSchema(ctx, s.pool))

	s.store = NewStore(s.pool)
}

func (s *StoreTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.resource != nil {
		if err := s.dockerPool.Purge(s.resource); err != nil {
			fmt.Printf("postgres teardown: %s\n", err)
		}
	}
}

func (s *StoreTestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		`TRUNCATE users, exercises, workouts, workout_exercises, executions, execution_exercises, execution_sets, goals CASCADE;`)
	s.Require().NoError(err)
}

func (s *StoreTestSuite) seed() (*domain.User, *domain.Exercise, *domain.Workout, *domain.WorkoutExercise) {
	ctx := context.Background()

	user := &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"}
	s.Require().NoError(s.store.Users().Create(ctx, user))

	exercise := &domain.Exercise{Name: "Squat", MuscleGroup: "Legs", Difficulty: domain.DifficultyBeginner, Public: true}
	s.Require().NoError(s.store.Exercises().Create(ctx, exercise))

	workout := &domain.Workout{OwnerID: user.ID, Name: "Leg day", DefaultRestSeconds: 90}
	s.Require().NoError(s.store.Workouts().Create(ctx, workout))

	we := &domain.WorkoutExercise{
		WorkoutID: workout.ID, ExerciseID: exercise.ID, Order: 1, Sets: 3, RecommendedReps: "8-12",
		RestSeconds: 60, UseDefaultRest: true,
	}
	s.Require().NoError(s.store.Workouts().AddExercise(ctx, we))
	return user, exercise, workout, we
}

func (s *StoreTestSuite) TestUserDuplicateEmail() {
	ctx := context.Background()
	s.Require().NoError(s.store.Users().Create(ctx, &domain.User{Email: "a@b.c", PasswordHash: "x"}))
	err := s.store.Users().Create(ctx, &domain.User{Email: "a@b.c", PasswordHash: "x"})
	s.ErrorIs(err, repository.ErrDuplicate)

	_, err = s.store.Users().GetByID(ctx, "missing")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *StoreTestSuite) TestExerciseFiltersAndInUse() {
	ctx := context.Background()
	user, exercise, _, _ := s.seed()

	private := &domain.Exercise{Name: "Secret 100%", MuscleGroup: "Legs", OwnerID: &user.ID}
	s.Require().NoError(s.store.Exercises().Create(ctx, private))

	got, err := s.store.Exercises().List(ctx, repository.ExerciseFilter{RequesterID: "other", MuscleGroup: "leg"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(exercise.ID, got[0].ID)

	got, err = s.store.Exercises().List(ctx, repository.ExerciseFilter{RequesterID: user.ID, Name: "100%"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(private.ID, got[0].ID)

	s.ErrorIs(s.store.Exercises().Delete(ctx, exercise.ID), repository.ErrInUse)
	s.ErrorIs(s.store.Exercises().Delete(ctx, "missing"), repository.ErrNotFound)
}

func (s *StoreTestSuite) TestExecutionTreeAndCascade() {
	ctx := context.Background()
	user, exercise, workout, we := s.seed()

	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	execution := &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID, StartedAt: started}
	s.Require().NoError(s.store.Executions().Create(ctx, execution))

	ee := &domain.ExecutionExercise{ExecutionID: execution.ID, ExerciseID: exercise.ID, WorkoutExerciseID: &we.ID, Order: 1}
	s.Require().NoError(s.store.Executions().CreateExercise(ctx, ee))
	reps := 10
	for _, order := range []int{2, 1, 3} {
		s.Require().NoError(s.store.Executions().CreateSet(ctx, &domain.ExecutionSet{
			ExecutionExerciseID: ee.ID, Order: order, Reps: &reps,
		}))
	}

	got, err := s.store.Executions().GetByID(ctx, execution.ID)
	s.Require().NoError(err)
	s.True(got.StartedAt.Equal(started))
	s.Require().Len(got.Exercises, 1)
	s.Require().Len(got.Exercises[0].Sets, 3)
	s.Equal(1, got.Exercises[0].Sets[0].Order)
	s.Equal(3, got.Exercises[0].Sets[2].Order)

	from := started.Add(-time.Hour)
	n, err := s.store.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: user.ID, From: &from})
	s.Require().NoError(err)
	s.Equal(1, n)

	s.Require().NoError(s.store.Workouts().Delete(ctx, workout.ID))
	_, err = s.store.Executions().GetByID(ctx, execution.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *StoreTestSuite) TestWithTxRollback() {
	ctx := context.Background()
	user, _, workout, _ := s.seed()

	boom := errors.New("boom")
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Executions().Create(ctx, &domain.Execution{WorkoutID: workout.ID, OwnerID: user.ID, StartedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	n, err := s.store.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: user.ID})
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *StoreTestSuite) TestWorkoutExerciseOrderIsUnique() {
	ctx := context.Background()
	_, exercise, workout, _ := s.seed()

	err := s.store.Workouts().AddExercise(ctx, &domain.WorkoutExercise{
		WorkoutID: workout.ID, ExerciseID: exercise.ID, Order: 1, Sets: 1,
	})
	s.ErrorIs(err, repository.ErrDuplicate)
}

func (s *StoreTestSuite) TestUserDeleteKeepsPublicExercises() {
	ctx := context.Background()
	user, _, workout, _ := s.seed()

	shared := &domain.Exercise{Name: "Shared row", OwnerID: &user.ID, Public: true}
	s.Require().NoError(s.store.Exercises().Create(ctx, shared))
	private := &domain.Exercise{Name: "Secret curl", OwnerID: &user.ID}
	s.Require().NoError(s.store.Exercises().Create(ctx, private))
	weight := 80.5
	s.Require().NoError(s.store.Executions().Create(ctx, &domain.Execution{
		WorkoutID: workout.ID, OwnerID: user.ID, StartedAt: time.Now(), BodyWeight: &weight,
	}))

	history, err := s.store.Executions().History(ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Require().NotNil(history[0].BodyWeight)
	s.Equal(weight, *history[0].BodyWeight)

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.Users().Delete(ctx, user.ID)
	})
	s.Require().NoError(err)

	kept, err := s.store.Exercises().GetByID(ctx, shared.ID)
	s.Require().NoError(err)
	s.Nil(kept.OwnerID)
	_, err = s.store.Exercises().GetByID(ctx, private.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.store.Workouts().GetByID(ctx, workout.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.store.Users().Delete(ctx, user.ID), repository.ErrNotFound)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
	assert.Equal(t, "%%", likePattern(""))
	assert.NoError(t, mapError(nil))
}
