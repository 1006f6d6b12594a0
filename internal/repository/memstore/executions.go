package memstore

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"sort"
)

type executionRepo struct{ s *Store }

func (r *executionRepo) Create(_ context.Context, execution *domain.Execution) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.workouts[execution.WorkoutID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stamp(&execution.ID, &execution.CreatedAt, &execution.UpdatedAt)
	stored := *execution
	stored.Exercises = nil
	r.s.d.executions[execution.ID] = stored
	return nil
}

func (r *executionRepo) GetByID(_ context.Context, id string) (*domain.Execution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ex, ok := r.s.d.executions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ex.Exercises = r.s.treeLocked(id)
	return &ex, nil
}

// treeLocked assembles the exercise/set tree of one execution. Callers must hold the lock.
func (s *Store) treeLocked(executionID string) []domain.ExecutionExercise {
	exercises := s.executionExercisesLocked(executionID)
	for i := range exercises {
		sets := []domain.ExecutionSet{}
		for _, set := range s.d.sets {
			if set.ExecutionExerciseID == exercises[i].ID {
				sets = append(sets, set)
			}
		}
		sort.Slice(sets, func(a, b int) bool {
			if sets[a].Order != sets[b].Order {
				return sets[a].Order < sets[b].Order
			}
			return s.before(sets[a].ID, sets[b].ID)
		})
		exercises[i].Sets = sets
	}
	return exercises
}

func (s *Store) executionExercisesLocked(executionID string) []domain.ExecutionExercise {
	out := []domain.ExecutionExercise{}
	for _, ee := range s.d.executionExercises {
		if ee.ExecutionID == executionID {
			out = append(out, ee)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return s.before(out[i].ID, out[j].ID)
	})
	return out
}

func (s *Store) deleteExecutionLocked(id string) {
	for eeID, ee := range s.d.executionExercises {
		if ee.ExecutionID != id {
			continue
		}
		for setID, set := range s.d.sets {
			if set.ExecutionExerciseID == eeID {
				delete(s.d.sets, setID)
			}
		}
		delete(s.d.executionExercises, eeID)
	}
	delete(s.d.executions, id)
}

func matchExecution(ex domain.Execution, f repository.ExecutionFilter) bool {
	if ex.OwnerID != f.OwnerID {
		return false
	}
	if f.WorkoutID != "" && ex.WorkoutID != f.WorkoutID {
		return false
	}
	if f.From != nil && ex.StartedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && ex.StartedAt.After(*f.To) {
		return false
	}
	return true
}

func (r *executionRepo) List(_ context.Context, filter repository.ExecutionFilter) ([]domain.Execution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Execution
	for _, ex := range r.s.d.executions {
		if matchExecution(ex, filter) {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return r.s.before(out[j].ID, out[i].ID)
	})
	out = paginate(out, filter.Page)
	for i := range out {
		out[i].Exercises = r.s.treeLocked(out[i].ID)
	}
	return out, nil
}

func (r *executionRepo) History(_ context.Context, ownerID string) ([]domain.Execution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Execution{}
	for _, ex := range r.s.d.executions {
		if ex.OwnerID == ownerID {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return r.s.before(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *executionRepo) Count(_ context.Context, filter repository.ExecutionFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, ex := range r.s.d.executions {
		if matchExecution(ex, filter) {
			n++
		}
	}
	return n, nil
}

func (r *executionRepo) Update(_ context.Context, execution *domain.Execution) error {
	defer r.s.lockWrite()()

	existing, ok := r.s.d.executions[execution.ID]
	if !ok {
		return repository.ErrNotFound
	}
	execution.OwnerID = existing.OwnerID
	execution.WorkoutID = existing.WorkoutID
	execution.CreatedAt = existing.CreatedAt
	execution.UpdatedAt = r.s.now()
	stored := *execution
	stored.Exercises = nil
	r.s.d.executions[execution.ID] = stored
	return nil
}

func (r *executionRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.executions[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteExecutionLocked(id)
	return nil
}

func (r *executionRepo) CreateExercise(_ context.Context, ee *domain.ExecutionExercise) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.executions[ee.ExecutionID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.d.exercises[ee.ExerciseID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stamp(&ee.ID, &ee.CreatedAt, &ee.UpdatedAt)
	stored := *ee
	stored.Sets = nil
	r.s.d.executionExercises[ee.ID] = stored
	return nil
}

func (r *executionRepo) UpdateExercise(_ context.Context, ee *domain.ExecutionExercise) error {
	defer r.s.lockWrite()()

	existing, ok := r.s.d.executionExercises[ee.ID]
	if !ok {
		return repository.ErrNotFound
	}
	ee.ExecutionID = existing.ExecutionID
	ee.CreatedAt = existing.CreatedAt
	ee.UpdatedAt = r.s.now()
	stored := *ee
	stored.Sets = nil
	r.s.d.executionExercises[ee.ID] = stored
	return nil
}

func (r *executionRepo) ListExercises(_ context.Context, executionID string) ([]domain.ExecutionExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.executionExercisesLocked(executionID), nil
}

func (r *executionRepo) CreateSet(_ context.Context, set *domain.ExecutionSet) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.executionExercises[set.ExecutionExerciseID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stamp(&set.ID, &set.CreatedAt, &set.UpdatedAt)
	r.s.d.sets[set.ID] = *set
	return nil
}

func (r *executionRepo) DeleteSets(_ context.Context, executionExerciseID string) error {
	defer r.s.lockWrite()()

	for id, set := range r.s.d.sets {
		if set.ExecutionExerciseID == executionExerciseID {
			delete(r.s.d.sets, id)
		}
	}
	return nil
}
