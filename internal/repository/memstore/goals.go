package memstore

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"sort"
)

type goalRepo struct{ s *Store }

func (r *goalRepo) Create(_ context.Context, goal *domain.Goal) error {
	defer r.s.lockWrite()()

	r.s.stamp(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	r.s.d.goals[goal.ID] = *goal
	return nil
}

func (r *goalRepo) GetByID(_ context.Context, id string) (*domain.Goal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.d.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func matchGoal(g domain.Goal, f repository.GoalFilter) bool {
	if g.OwnerID != f.OwnerID {
		return false
	}
	return f.Active == nil || g.Active == *f.Active
}

func (r *goalRepo) List(_ context.Context, filter repository.GoalFilter) ([]domain.Goal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Goal
	for _, g := range r.s.d.goals {
		if matchGoal(g, filter) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return r.s.before(out[j].ID, out[i].ID)
	})
	return paginate(out, filter.Page), nil
}

func (r *goalRepo) Count(_ context.Context, filter repository.GoalFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, g := range r.s.d.goals {
		if matchGoal(g, filter) {
			n++
		}
	}
	return n, nil
}

func (r *goalRepo) Update(_ context.Context, goal *domain.Goal) error {
	defer r.s.lockWrite()()

	existing, ok := r.s.d.goals[goal.ID]
	if !ok {
		return repository.ErrNotFound
	}
	goal.OwnerID = existing.OwnerID
	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = r.s.now()
	r.s.d.goals[goal.ID] = *goal
	return nil
}

func (r *goalRepo) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.d.goals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.d.goals, id)
	return nil
}
