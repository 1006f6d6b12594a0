package memstore

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"sort"
	"strings"
)

type exerciseRepo struct{ s *Store }

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) error {
	defer r.s.lockWrite()()

	r.s.stamp(&exercise.ID, &exercise.CreatedAt, &exercise.UpdatedAt)
	r.s.d.exercises[exercise.ID] = *exercise
	return nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.d.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (r *exerciseRepo) List(_ context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Exercise
	for _, e := range r.s.d.exercises {
		if !e.VisibleTo(filter.RequesterID) {
			continue
		}
		if filter.MuscleGroup != "" && !containsFold(e.MuscleGroup, filter.MuscleGroup) {
			continue
		}
		if filter.Equipment != "" && !containsFold(e.Equipment, filter.Equipment) {
			continue
		}
		if filter.Difficulty != "" && e.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Name != "" && !containsFold(e.Name, filter.Name) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return r.s.before(out[i].ID, out[j].ID)
	})
	return paginate(out, filter.Page), nil
}

func (r *exerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	defer r.s.lockWrite()()

	existing, ok := r.s.d.exercises[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	exercise.OwnerID = existing.OwnerID
	exercise.CreatedAt = existing.CreatedAt
	exercise.UpdatedAt = r.s.now()
	r.s.d.exercises[exercise.ID] = *exercise
	return nil
}

func (r *exerciseRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	for _, we := range r.s.d.workoutExercises {
		if we.ExerciseID == id {
			return repository.ErrInUse
		}
	}
	for _, ee := range r.s.d.executionExercises {
		if ee.ExerciseID == id {
			return repository.ErrInUse
		}
	}
	delete(r.s.d.exercises, id)
	return nil
}

func paginate[T any](items []T, page repository.Page) []T {
	page = page.Normalize()
	if page.Skip >= len(items) {
		return []T{}
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}
