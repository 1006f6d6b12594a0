package postgres

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"fmt"
)

const goalColumns = `id, owner_id, kind, target_value, current_value, start_date, end_date, active, created_at, updated_at`

type goalRepo struct{ s *Store }

func scanGoal(row scanner) (*domain.Goal, error) {
	var g domain.Goal
	if err := row.Scan(
		&g.ID, &g.OwnerID, &g.Kind, &g.TargetValue, &g.CurrentValue, &g.StartDate, &g.EndDate, &g.Active,
		&g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	g.StartDate = utc(g.StartDate)
	g.EndDate = utcPtr(g.EndDate)
	g.CreatedAt = utc(g.CreatedAt)
	g.UpdatedAt = utc(g.UpdatedAt)
	return &g, nil
}

func (r *goalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	newID(&goal.ID)
	now := r.s.now()
	goal.CreatedAt, goal.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		goal.ID, goal.OwnerID, goal.Kind, goal.TargetValue, goal.CurrentValue, goal.StartDate, goal.EndDate,
		goal.Active, goal.CreatedAt, goal.UpdatedAt,
	)
	return mapError(err)
}

func (r *goalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1;`, id)
	return scanGoal(row)
}

func (r *goalRepo) List(ctx context.Context, filter repository.GoalFilter) ([]domain.Goal, error) {
	page := filter.Page.Normalize()
	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+goalColumns+`
			FROM goals
			WHERE owner_id = $1 AND ($2::boolean IS NULL OR active = $2)
			ORDER BY start_date DESC, created_at DESC, id
			LIMIT $3 OFFSET $4;`,
		filter.OwnerID, filter.Active, page.Limit, page.Skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepo) Count(ctx context.Context, filter repository.GoalFilter) (int, error) {
	var count int
	err := r.s.q.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM goals WHERE owner_id = $1 AND ($2::boolean IS NULL OR active = $2);`,
		filter.OwnerID, filter.Active,
	).Scan(&count)
	if err != nil {
		return -1, err
	}
	return count, nil
}

func (r *goalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	goal.UpdatedAt = r.s.now()
	err := r.s.q.QueryRow(
		ctx,
		`UPDATE goals SET kind = $1, target_value = $2, current_value = $3, start_date = $4, end_date = $5,
				active = $6, updated_at = $7
			WHERE id = $8
			RETURNING owner_id, created_at;`,
		goal.Kind, goal.TargetValue, goal.CurrentValue, goal.StartDate, goal.EndDate, goal.Active,
		goal.UpdatedAt, goal.ID,
	).Scan(&goal.OwnerID, &goal.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	goal.CreatedAt = utc(goal.CreatedAt)
	return nil
}

func (r *goalRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.s.q.Exec(ctx, `DELETE FROM goals WHERE id = $1;`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
