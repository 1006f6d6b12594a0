// Package memstore is an in-memory repository.Store. It backs the "memory"
// database driver for local development and is the fake used by service tests.
package memstore

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type data struct {
	users              map[string]domain.User
	exercises          map[string]domain.Exercise
	workouts           map[string]domain.Workout
	workoutExercises   map[string]domain.WorkoutExercise
	executions         map[string]domain.Execution
	executionExercises map[string]domain.ExecutionExercise
	sets               map[string]domain.ExecutionSet
	goals              map[string]domain.Goal
	// insertion sequence, used as a stable tie-breaker when sorting
	seq map[string]int64
}

func newData() *data {
	return &data{
		users:              map[string]domain.User{},
		exercises:          map[string]domain.Exercise{},
		workouts:           map[string]domain.Workout{},
		workoutExercises:   map[string]domain.WorkoutExercise{},
		executions:         map[string]domain.Execution{},
		executionExercises: map[string]domain.ExecutionExercise{},
		sets:               map[string]domain.ExecutionSet{},
		goals:              map[string]domain.Goal{},
		seq:                map[string]int64{},
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	return &data{
		users:              cloneMap(d.users),
		exercises:          cloneMap(d.exercises),
		workouts:           cloneMap(d.workouts),
		workoutExercises:   cloneMap(d.workoutExercises),
		executions:         cloneMap(d.executions),
		executionExercises: cloneMap(d.executionExercises),
		sets:               cloneMap(d.sets),
		goals:              cloneMap(d.goals),
		seq:                cloneMap(d.seq),
	}
}

// Store keeps every entity in maps guarded by a single mutex.
// A transaction works on a private copy of the data that replaces the shared
// copy on commit, so readers never see uncommitted rows. Writers outside a
// transaction wait for the running one to finish.
type Store struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	d       *data
	counter int64
	now     func() time.Time
	inTx    bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		d:   newData(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() repository.UserRepository           { return &userRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository   { return &exerciseRepo{s} }
func (s *Store) Workouts() repository.WorkoutRepository     { return &workoutRepo{s} }
func (s *Store) Executions() repository.ExecutionRepository { return &executionRepo{s} }
func (s *Store) Goals() repository.GoalRepository           { return &goalRepo{s} }

// WithTx runs fn against a copy of the store and publishes the copy only when
// fn succeeds. Inside a transaction it joins the running one.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	tx := &Store{
		d:       s.d.clone(),
		counter: s.counter,
		now:     s.now,
		inTx:    true,
	}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.d = tx.d
	s.counter = tx.counter
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// lockWrite takes the write lock. Outside a transaction it first waits for any
// running transaction, whose commit would otherwise overwrite the write.
func (s *Store) lockWrite() (unlock func()) {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

// stamp assigns an id when missing and records the insertion sequence.
// Callers must hold s.mu.
func (s *Store) stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := s.now()
	*createdAt = now
	*updatedAt = now
	s.counter++
	s.d.seq[*id] = s.counter
}

func (s *Store) before(a, b string) bool {
	return s.d.seq[a] < s.d.seq[b]
}
