package postgres

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	workoutColumns         = `id, owner_id, name, description, default_rest_seconds, created_at, updated_at`
	workoutExerciseColumns = `id, workout_id, exercise_id, ord, sets, recommended_reps, rest_seconds, use_default_rest,
	created_at, updated_at`
)

type workoutRepo struct{ s *Store }

func scanWorkout(row scanner) (*domain.Workout, error) {
	var w domain.Workout
	if err := row.Scan(
		&w.ID, &w.OwnerID, &w.Name, &w.Description, &w.DefaultRestSeconds, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	w.CreatedAt = utc(w.CreatedAt)
	w.UpdatedAt = utc(w.UpdatedAt)
	return &w, nil
}

func scanWorkoutExercise(row scanner) (*domain.WorkoutExercise, error) {
	var we domain.WorkoutExercise
	if err := row.Scan(
		&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Order, &we.Sets, &we.RecommendedReps, &we.RestSeconds,
		&we.UseDefaultRest, &we.CreatedAt, &we.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	we.CreatedAt = utc(we.CreatedAt)
	we.UpdatedAt = utc(we.UpdatedAt)
	return &we, nil
}

func rows2workoutExercises(rows pgx.Rows) ([]domain.WorkoutExercise, error) {
	defer rows.Close()
	out := []domain.WorkoutExercise{}
	for rows.Next() {
		we, err := scanWorkoutExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *we)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workoutRepo) Create(ctx context.Context, workout *domain.Workout) error {
	newID(&workout.ID)
	now := r.s.now()
	workout.CreatedAt, workout.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO workouts (`+workoutColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		workout.ID, workout.OwnerID, workout.Name, workout.Description, workout.DefaultRestSeconds,
		workout.CreatedAt, workout.UpdatedAt,
	)
	return mapError(err)
}

func (r *workoutRepo) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1;`, id)
	w, err := scanWorkout(row)
	if err != nil {
		return nil, err
	}
	if w.Exercises, err = r.ListExercises(ctx, id); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *workoutRepo) ListByOwner(ctx context.Context, ownerID string, page repository.Page) ([]domain.Workout, error) {
	page = page.Normalize()
	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+workoutColumns+`
			FROM workouts
			WHERE owner_id = $1
			ORDER BY created_at DESC, id
			LIMIT $2 OFFSET $3;`,
		ownerID, page.Limit, page.Skip,
	)
	if err != nil {
		return nil, err
	}

	workouts := []domain.Workout{}
	ids := []string{}
	func() {
		defer rows.Close()
		for rows.Next() {
			var w *domain.Workout
			if w, err = scanWorkout(rows); err != nil {
				return
			}
			workouts = append(workouts, *w)
			ids = append(ids, w.ID)
		}
		err = rows.Err()
	}()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return workouts, nil
	}

	exRows, err := r.s.q.Query(
		ctx,
		`SELECT `+workoutExerciseColumns+`
			FROM workout_exercises
			WHERE workout_id = ANY($1)
			ORDER BY ord, created_at, id;`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	exercises, err := rows2workoutExercises(exRows)
	if err != nil {
		return nil, err
	}
	byWorkout := map[string][]domain.WorkoutExercise{}
	for _, we := range exercises {
		byWorkout[we.WorkoutID] = append(byWorkout[we.WorkoutID], we)
	}
	for i := range workouts {
		workouts[i].Exercises = byWorkout[workouts[i].ID]
		if workouts[i].Exercises == nil {
			workouts[i].Exercises = []domain.WorkoutExercise{}
		}
	}
	return workouts, nil
}

func (r *workoutRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	if err := r.s.q.QueryRow(ctx, `SELECT COUNT(*) FROM workouts WHERE owner_id = $1;`, ownerID).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

func (r *workoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	workout.UpdatedAt = r.s.now()
	err := r.s.q.QueryRow(
		ctx,
		`UPDATE workouts SET name = $1, description = $2, default_rest_seconds = $3, updated_at = $4
			WHERE id = $5
			RETURNING owner_id, created_at;`,
		workout.Name, workout.Description, workout.DefaultRestSeconds, workout.UpdatedAt, workout.ID,
	).Scan(&workout.OwnerID, &workout.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	workout.CreatedAt = utc(workout.CreatedAt)
	return nil
}

// Delete relies on ON DELETE CASCADE for workout exercises and executions.
func (r *workoutRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.s.q.Exec(ctx, `DELETE FROM workouts WHERE id = $1;`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *workoutRepo) AddExercise(ctx context.Context, we *domain.WorkoutExercise) error {
	newID(&we.ID)
	now := r.s.now()
	we.CreatedAt, we.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO workout_exercises (`+workoutExerciseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		we.ID, we.WorkoutID, we.ExerciseID, we.Order, we.Sets, we.RecommendedReps, we.RestSeconds, we.UseDefaultRest,
		we.CreatedAt, we.UpdatedAt,
	)
	return mapError(err)
}

func (r *workoutRepo) GetExercise(ctx context.Context, id string) (*domain.WorkoutExercise, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+workoutExerciseColumns+` FROM workout_exercises WHERE id = $1;`, id)
	return scanWorkoutExercise(row)
}

func (r *workoutRepo) ListExercises(ctx context.Context, workoutID string) ([]domain.WorkoutExercise, error) {
	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+workoutExerciseColumns+`
			FROM workout_exercises
			WHERE workout_id = $1
			ORDER BY ord, created_at, id;`,
		workoutID,
	)
	if err != nil {
		return nil, err
	}
	return rows2workoutExercises(rows)
}

func (r *workoutRepo) UpdateExercise(ctx context.Context, we *domain.WorkoutExercise) error {
	we.UpdatedAt = r.s.now()
	err := r.s.q.QueryRow(
		ctx,
		`UPDATE workout_exercises SET exercise_id = $1, ord = $2, sets = $3, recommended_reps = $4,
				rest_seconds = $5, use_default_rest = $6, updated_at = $7
			WHERE id = $8
			RETURNING workout_id, created_at;`,
		we.ExerciseID, we.Order, we.Sets, we.RecommendedReps, we.RestSeconds, we.UseDefaultRest, we.UpdatedAt, we.ID,
	).Scan(&we.WorkoutID, &we.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	we.CreatedAt = utc(we.CreatedAt)
	return nil
}

func (r *workoutRepo) DeleteExercise(ctx context.Context, id string) error {
	tag, err := r.s.q.Exec(ctx, `DELETE FROM workout_exercises WHERE id = $1;`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
