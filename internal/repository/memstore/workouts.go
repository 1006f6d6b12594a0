package memstore

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"sort"
)

type workoutRepo struct{ s *Store }

func (r *workoutRepo) Create(_ context.Context, workout *domain.Workout) error {
	defer r.s.lockWrite()()

	r.s.stamp(&workout.ID, &workout.CreatedAt, &workout.UpdatedAt)
	stored := *workout
	stored.Exercises = nil
	r.s.d.workouts[workout.ID] = stored
	return nil
}

func (r *workoutRepo) GetByID(_ context.Context, id string) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.d.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w.Exercises = r.exercisesOf(id)
	return &w, nil
}

// exercisesOf returns the template's exercises ordered by Order. Callers must hold the lock.
func (r *workoutRepo) exercisesOf(workoutID string) []domain.WorkoutExercise {
	out := []domain.WorkoutExercise{}
	for _, we := range r.s.d.workoutExercises {
		if we.WorkoutID == workoutID {
			out = append(out, we)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return r.s.before(out[i].ID, out[j].ID)
	})
	return out
}

func (r *workoutRepo) ListByOwner(_ context.Context, ownerID string, page repository.Page) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Workout
	for _, w := range r.s.d.workouts {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.s.before(out[j].ID, out[i].ID)
	})
	out = paginate(out, page)
	for i := range out {
		out[i].Exercises = r.exercisesOf(out[i].ID)
	}
	return out, nil
}

func (r *workoutRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, w := range r.s.d.workouts {
		if w.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *workoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	defer r.s.lockWrite()()

	existing, ok := r.s.d.workouts[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	workout.OwnerID = existing.OwnerID
	workout.CreatedAt = existing.CreatedAt
	workout.UpdatedAt = r.s.now()
	stored := *workout
	stored.Exercises = nil
	r.s.d.workouts[workout.ID] = stored
	return nil
}

func (r *workoutRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteWorkoutLocked(id)
	return nil
}

func (s *Store) deleteWorkoutLocked(id string) {
	for weID, we := range s.d.workoutExercises {
		if we.WorkoutID == id {
			delete(s.d.workoutExercises, weID)
		}
	}
	for execID, ex := range s.d.executions {
		if ex.WorkoutID == id {
			s.deleteExecutionLocked(execID)
		}
	}
	delete(s.d.workouts, id)
}

func (r *workoutRepo) AddExercise(_ context.Context, we *domain.WorkoutExercise) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.workouts[we.WorkoutID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.d.exercises[we.ExerciseID]; !ok {
		return repository.ErrNotFound
	}
	if r.s.orderTakenLocked(we.WorkoutID, we.Order, "") {
		return repository.ErrDuplicate
	}
	r.s.stamp(&we.ID, &we.CreatedAt, &we.UpdatedAt)
	r.s.d.workoutExercises[we.ID] = *we
	return nil
}

// orderTakenLocked mirrors the unique (workout_id, ord) index of the SQL schema.
func (s *Store) orderTakenLocked(workoutID string, order int, exceptID string) bool {
	for _, we := range s.d.workoutExercises {
		if we.WorkoutID == workoutID && we.Order == order && we.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *workoutRepo) GetExercise(_ context.Context, id string) (*domain.WorkoutExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	we, ok := r.s.d.workoutExercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &we, nil
}

func (r *workoutRepo) ListExercises(_ context.Context, workoutID string) ([]domain.WorkoutExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.exercisesOf(workoutID), nil
}

func (r *workoutRepo) UpdateExercise(_ context.Context, we *domain.WorkoutExercise) error {
	defer r.s.lockWrite()()

	existing, ok := r.s.d.workoutExercises[we.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.d.exercises[we.ExerciseID]; !ok {
		return repository.ErrNotFound
	}
	if r.s.orderTakenLocked(existing.WorkoutID, we.Order, we.ID) {
		return repository.ErrDuplicate
	}
	we.WorkoutID = existing.WorkoutID
	we.CreatedAt = existing.CreatedAt
	we.UpdatedAt = r.s.now()
	r.s.d.workoutExercises[we.ID] = *we
	return nil
}

// DeleteExercise detaches execution exercises that were planned from it.
func (r *workoutRepo) DeleteExercise(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.workoutExercises[id]; !ok {
		return repository.ErrNotFound
	}
	for eeID, ee := range r.s.d.executionExercises {
		if ee.WorkoutExerciseID != nil && *ee.WorkoutExerciseID == id {
			ee.WorkoutExerciseID = nil
			r.s.d.executionExercises[eeID] = ee
		}
	}
	delete(r.s.d.workoutExercises, id)
	return nil
}
