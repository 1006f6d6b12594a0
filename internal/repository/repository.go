package repository

import (
	"alcyxob/fittracker/internal/domain"
	"context"
	"time"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	ErrInUse     = RepositoryError("still referenced")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page is a skip/limit window over a list result.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// ExerciseFilter narrows an exercise listing. Empty strings match everything.
// The result always honors the public-or-owner visibility rule for RequesterID.
type ExerciseFilter struct {
	RequesterID string
	MuscleGroup string // substring, case-insensitive
	Equipment   string // substring, case-insensitive
	Difficulty  domain.Difficulty
	Name        string // substring, case-insensitive
	Page        Page
}

// ExecutionFilter narrows an execution listing to one owner.
type ExecutionFilter struct {
	OwnerID   string
	WorkoutID string     // optional
	From      *time.Time // optional, inclusive bound on StartedAt
	To        *time.Time // optional, inclusive bound on StartedAt
	Page      Page
}

// GoalFilter narrows a goal listing to one owner.
type GoalFilter struct {
	OwnerID string
	Active  *bool
	Page    Page
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the account with its templates, executions, goals and private
	// exercises. Public exercises stay in the catalog without an owner.
	Delete(ctx context.Context, id string) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	// Delete fails with ErrInUse while a template or an execution references the exercise.
	Delete(ctx context.Context, id string) error
}

// WorkoutRepository defines the interface for interacting with workout templates
// and their planned exercises.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) error
	// GetByID returns the template with its exercises ordered by Order.
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	ListByOwner(ctx context.Context, ownerID string, page Page) ([]domain.Workout, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Update(ctx context.Context, workout *domain.Workout) error
	// Delete cascades to the template's exercises and executions.
	Delete(ctx context.Context, id string) error

	AddExercise(ctx context.Context, we *domain.WorkoutExercise) error
	GetExercise(ctx context.Context, id string) (*domain.WorkoutExercise, error)
	ListExercises(ctx context.Context, workoutID string) ([]domain.WorkoutExercise, error)
	UpdateExercise(ctx context.Context, we *domain.WorkoutExercise) error
	DeleteExercise(ctx context.Context, id string) error
}

// ExecutionRepository defines the interface for interacting with executions,
// their exercises and sets.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *domain.Execution) error
	// GetByID returns the execution with its full exercise/set tree.
	GetByID(ctx context.Context, id string) (*domain.Execution, error)
	// List returns executions newest first, each with its full tree.
	List(ctx context.Context, filter ExecutionFilter) ([]domain.Execution, error)
	Count(ctx context.Context, filter ExecutionFilter) (int, error)
	// History returns every execution of the owner oldest first, without trees.
	History(ctx context.Context, ownerID string) ([]domain.Execution, error)
	Update(ctx context.Context, execution *domain.Execution) error
	// Delete cascades to exercises and sets.
	Delete(ctx context.Context, id string) error

	CreateExercise(ctx context.Context, ee *domain.ExecutionExercise) error
	UpdateExercise(ctx context.Context, ee *domain.ExecutionExercise) error
	ListExercises(ctx context.Context, executionID string) ([]domain.ExecutionExercise, error)

	CreateSet(ctx context.Context, set *domain.ExecutionSet) error
	DeleteSets(ctx context.Context, executionExerciseID string) error
}

// GoalRepository defines the interface for interacting with goal data.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) error
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	List(ctx context.Context, filter GoalFilter) ([]domain.Goal, error)
	Count(ctx context.Context, filter GoalFilter) (int, error)
	Update(ctx context.Context, goal *domain.Goal) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the repositories of one backend.
type Store interface {
	Users() UserRepository
	Exercises() ExerciseRepository
	Workouts() WorkoutRepository
	Executions() ExecutionRepository
	Goals() GoalRepository

	// WithTx runs fn inside a single transaction. The Store handed to fn is bound
	// to that transaction; when fn returns an error everything is rolled back.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
