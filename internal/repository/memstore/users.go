package memstore

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	defer r.s.lockWrite()()

	for _, u := range r.s.d.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.s.stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	defer r.s.lockWrite()()

	existing, ok := r.s.d.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, u := range r.s.d.users {
		if u.ID != user.ID && u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.d.users[user.ID] = *user
	return nil
}

// Delete drops everything the user owns. Public exercises lose their owner instead;
// a private exercise still referenced by someone else's rows blocks the deletion.
func (r *userRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.users[id]; !ok {
		return repository.ErrNotFound
	}

	private := map[string]bool{}
	for exID, ex := range r.s.d.exercises {
		if ex.IsOwnedBy(id) && !ex.Public {
			private[exID] = true
		}
	}
	for _, we := range r.s.d.workoutExercises {
		if private[we.ExerciseID] && r.s.d.workouts[we.WorkoutID].OwnerID != id {
			return repository.ErrInUse
		}
	}
	for _, ee := range r.s.d.executionExercises {
		if private[ee.ExerciseID] && r.s.d.executions[ee.ExecutionID].OwnerID != id {
			return repository.ErrInUse
		}
	}

	for execID, ex := range r.s.d.executions {
		if ex.OwnerID == id {
			r.s.deleteExecutionLocked(execID)
		}
	}
	for wID, w := range r.s.d.workouts {
		if w.OwnerID == id {
			r.s.deleteWorkoutLocked(wID)
		}
	}
	for gID, g := range r.s.d.goals {
		if g.OwnerID == id {
			delete(r.s.d.goals, gID)
		}
	}
	now := r.s.now()
	for exID, ex := range r.s.d.exercises {
		switch {
		case private[exID]:
			delete(r.s.d.exercises, exID)
		case ex.IsOwnedBy(id):
			ex.OwnerID = nil
			ex.UpdatedAt = now
			r.s.d.exercises[exID] = ex
		}
	}
	delete(r.s.d.users, id)
	return nil
}
