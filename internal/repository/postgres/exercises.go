package postgres

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const exerciseColumns = `id, owner_id, name, muscle_group, equipment, difficulty, description, instructions,
	image_url, public, created_at, updated_at`

type exerciseRepo struct{ s *Store }

func scanExercise(row scanner) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := row.Scan(
		&e.ID, &e.OwnerID, &e.Name, &e.MuscleGroup, &e.Equipment, &e.Difficulty, &e.Description, &e.Instructions,
		&e.ImageURL, &e.Public, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	e.CreatedAt = utc(e.CreatedAt)
	e.UpdatedAt = utc(e.UpdatedAt)
	return &e, nil
}

func rows2exercises(rows pgx.Rows) ([]domain.Exercise, error) {
	defer rows.Close()
	exercises := []domain.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) error {
	newID(&exercise.ID)
	now := r.s.now()
	exercise.CreatedAt, exercise.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO exercises (`+exerciseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		exercise.ID, exercise.OwnerID, exercise.Name, exercise.MuscleGroup, exercise.Equipment, exercise.Difficulty,
		exercise.Description, exercise.Instructions, exercise.ImageURL, exercise.Public,
		exercise.CreatedAt, exercise.UpdatedAt,
	)
	return mapError(err)
}

func (r *exerciseRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1;`, id)
	return scanExercise(row)
}

func (r *exerciseRepo) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	page := filter.Page.Normalize()
	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+exerciseColumns+`
			FROM exercises
			WHERE (public OR owner_id = $1)
				AND ($2 = '' OR muscle_group ILIKE $3)
				AND ($4 = '' OR equipment ILIKE $5)
				AND ($6 = '' OR difficulty = $6)
				AND ($7 = '' OR name ILIKE $8)
			ORDER BY name, created_at, id
			LIMIT $9 OFFSET $10;`,
		filter.RequesterID,
		filter.MuscleGroup, likePattern(filter.MuscleGroup),
		filter.Equipment, likePattern(filter.Equipment),
		string(filter.Difficulty),
		filter.Name, likePattern(filter.Name),
		page.Limit, page.Skip,
	)
	if err != nil {
		return nil, err
	}
	return rows2exercises(rows)
}

func (r *exerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	exercise.UpdatedAt = r.s.now()
	err := r.s.q.QueryRow(
		ctx,
		`UPDATE exercises SET name = $1, muscle_group = $2, equipment = $3, difficulty = $4, description = $5,
				instructions = $6, image_url = $7, public = $8, updated_at = $9
			WHERE id = $10
			RETURNING owner_id, created_at;`,
		exercise.Name, exercise.MuscleGroup, exercise.Equipment, exercise.Difficulty, exercise.Description,
		exercise.Instructions, exercise.ImageURL, exercise.Public, exercise.UpdatedAt, exercise.ID,
	).Scan(&exercise.OwnerID, &exercise.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	exercise.CreatedAt = utc(exercise.CreatedAt)
	return nil
}

func (r *exerciseRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.s.q.Exec(ctx, `DELETE FROM exercises WHERE id = $1;`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
