package postgres

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	executionColumns = `id, workout_id, owner_id, started_at, finished_at, duration_minutes, body_weight, notes,
	created_at, updated_at`
	executionExerciseColumns = `id, execution_id, exercise_id, workout_exercise_id, ord, notes, created_at, updated_at`
	executionSetColumns      = `id, execution_exercise_id, ord, reps, weight, rest_seconds, completed, created_at, updated_at`
)

type executionRepo struct{ s *Store }

func scanExecution(row scanner) (*domain.Execution, error) {
	var e domain.Execution
	if err := row.Scan(
		&e.ID, &e.WorkoutID, &e.OwnerID, &e.StartedAt, &e.FinishedAt, &e.DurationMinutes, &e.BodyWeight, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	e.StartedAt = utc(e.StartedAt)
	e.FinishedAt = utcPtr(e.FinishedAt)
	e.CreatedAt = utc(e.CreatedAt)
	e.UpdatedAt = utc(e.UpdatedAt)
	return &e, nil
}

func scanExecutionExercise(row scanner) (*domain.ExecutionExercise, error) {
	var ee domain.ExecutionExercise
	if err := row.Scan(
		&ee.ID, &ee.ExecutionID, &ee.ExerciseID, &ee.WorkoutExerciseID, &ee.Order, &ee.Notes, &ee.CreatedAt, &ee.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	ee.CreatedAt = utc(ee.CreatedAt)
	ee.UpdatedAt = utc(ee.UpdatedAt)
	return &ee, nil
}

func scanExecutionSet(row scanner) (*domain.ExecutionSet, error) {
	var set domain.ExecutionSet
	if err := row.Scan(
		&set.ID, &set.ExecutionExerciseID, &set.Order, &set.Reps, &set.Weight, &set.RestSeconds, &set.Completed,
		&set.CreatedAt, &set.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	set.CreatedAt = utc(set.CreatedAt)
	set.UpdatedAt = utc(set.UpdatedAt)
	return &set, nil
}

func rows2executionExercises(rows pgx.Rows) ([]domain.ExecutionExercise, error) {
	defer rows.Close()
	out := []domain.ExecutionExercise{}
	for rows.Next() {
		ee, err := scanExecutionExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *ee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func rows2executionSets(rows pgx.Rows) ([]domain.ExecutionSet, error) {
	defer rows.Close()
	out := []domain.ExecutionSet{}
	for rows.Next() {
		set, err := scanExecutionSet(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// loadTrees attaches the ordered exercise/set trees to the given executions with two queries.
func (r *executionRepo) loadTrees(ctx context.Context, executions []domain.Execution) error {
	if len(executions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(executions))
	for _, e := range executions {
		ids = append(ids, e.ID)
	}

	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+executionExerciseColumns+`
			FROM execution_exercises
			WHERE execution_id = ANY($1)
			ORDER BY ord, created_at, id;`,
		ids,
	)
	if err != nil {
		return err
	}
	exercises, err := rows2executionExercises(rows)
	if err != nil {
		return err
	}

	setRows, err := r.s.q.Query(
		ctx,
		`SELECT s.id, s.execution_exercise_id, s.ord, s.reps, s.weight, s.rest_seconds, s.completed,
				s.created_at, s.updated_at
			FROM execution_sets s
			JOIN execution_exercises e ON e.id = s.execution_exercise_id
			WHERE e.execution_id = ANY($1)
			ORDER BY s.ord, s.created_at, s.id;`,
		ids,
	)
	if err != nil {
		return err
	}
	sets, err := rows2executionSets(setRows)
	if err != nil {
		return err
	}

	setsByExercise := map[string][]domain.ExecutionSet{}
	for _, set := range sets {
		setsByExercise[set.ExecutionExerciseID] = append(setsByExercise[set.ExecutionExerciseID], set)
	}
	byExecution := map[string][]domain.ExecutionExercise{}
	for _, ee := range exercises {
		ee.Sets = setsByExercise[ee.ID]
		if ee.Sets == nil {
			ee.Sets = []domain.ExecutionSet{}
		}
		byExecution[ee.ExecutionID] = append(byExecution[ee.ExecutionID], ee)
	}
	for i := range executions {
		executions[i].Exercises = byExecution[executions[i].ID]
		if executions[i].Exercises == nil {
			executions[i].Exercises = []domain.ExecutionExercise{}
		}
	}
	return nil
}

func (r *executionRepo) Create(ctx context.Context, execution *domain.Execution) error {
	newID(&execution.ID)
	now := r.s.now()
	execution.CreatedAt, execution.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO executions (`+executionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		execution.ID, execution.WorkoutID, execution.OwnerID, execution.StartedAt, execution.FinishedAt,
		execution.DurationMinutes, execution.BodyWeight, execution.Notes, execution.CreatedAt, execution.UpdatedAt,
	)
	return mapError(err)
}

func (r *executionRepo) GetByID(ctx context.Context, id string) (*domain.Execution, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+executionColumns+` FROM executions WHERE id = $1;`, id)
	e, err := scanExecution(row)
	if err != nil {
		return nil, err
	}
	tree := []domain.Execution{*e}
	if err := r.loadTrees(ctx, tree); err != nil {
		return nil, err
	}
	return &tree[0], nil
}

const executionFilterWhere = `WHERE owner_id = $1
				AND ($2 = '' OR workout_id = $2)
				AND ($3::timestamptz IS NULL OR started_at >= $3)
				AND ($4::timestamptz IS NULL OR started_at <= $4)`

func (r *executionRepo) List(ctx context.Context, filter repository.ExecutionFilter) ([]domain.Execution, error) {
	page := filter.Page.Normalize()
	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+executionColumns+`
			FROM executions
			`+executionFilterWhere+`
			ORDER BY started_at DESC, created_at DESC, id
			LIMIT $5 OFFSET $6;`,
		filter.OwnerID, filter.WorkoutID, filter.From, filter.To, page.Limit, page.Skip,
	)
	if err != nil {
		return nil, err
	}

	executions := []domain.Execution{}
	func() {
		defer rows.Close()
		for rows.Next() {
			var e *domain.Execution
			if e, err = scanExecution(rows); err != nil {
				return
			}
			executions = append(executions, *e)
		}
		err = rows.Err()
	}()
	if err != nil {
		return nil, err
	}

	if err := r.loadTrees(ctx, executions); err != nil {
		return nil, err
	}
	return executions, nil
}

func (r *executionRepo) History(ctx context.Context, ownerID string) ([]domain.Execution, error) {
	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+executionColumns+`
			FROM executions
			WHERE owner_id = $1
			ORDER BY started_at, created_at, id;`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	executions := []domain.Execution{}
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, *e)
	}
	return executions, rows.Err()
}

func (r *executionRepo) Count(ctx context.Context, filter repository.ExecutionFilter) (int, error) {
	var count int
	err := r.s.q.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM executions `+executionFilterWhere+`;`,
		filter.OwnerID, filter.WorkoutID, filter.From, filter.To,
	).Scan(&count)
	if err != nil {
		return -1, err
	}
	return count, nil
}

func (r *executionRepo) Update(ctx context.Context, execution *domain.Execution) error {
	execution.UpdatedAt = r.s.now()
	err := r.s.q.QueryRow(
		ctx,
		`UPDATE executions SET started_at = $1, finished_at = $2, duration_minutes = $3, body_weight = $4,
				notes = $5, updated_at = $6
			WHERE id = $7
			RETURNING workout_id, owner_id, created_at;`,
		execution.StartedAt, execution.FinishedAt, execution.DurationMinutes, execution.BodyWeight,
		execution.Notes, execution.UpdatedAt, execution.ID,
	).Scan(&execution.WorkoutID, &execution.OwnerID, &execution.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	execution.CreatedAt = utc(execution.CreatedAt)
	return nil
}

func (r *executionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.s.q.Exec(ctx, `DELETE FROM executions WHERE id = $1;`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *executionRepo) CreateExercise(ctx context.Context, ee *domain.ExecutionExercise) error {
	newID(&ee.ID)
	now := r.s.now()
	ee.CreatedAt, ee.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO execution_exercises (`+executionExerciseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		ee.ID, ee.ExecutionID, ee.ExerciseID, ee.WorkoutExerciseID, ee.Order, ee.Notes, ee.CreatedAt, ee.UpdatedAt,
	)
	return mapError(err)
}

func (r *executionRepo) UpdateExercise(ctx context.Context, ee *domain.ExecutionExercise) error {
	ee.UpdatedAt = r.s.now()
	err := r.s.q.QueryRow(
		ctx,
		`UPDATE execution_exercises SET exercise_id = $1, workout_exercise_id = $2, ord = $3, notes = $4,
				updated_at = $5
			WHERE id = $6
			RETURNING execution_id, created_at;`,
		ee.ExerciseID, ee.WorkoutExerciseID, ee.Order, ee.Notes, ee.UpdatedAt, ee.ID,
	).Scan(&ee.ExecutionID, &ee.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	ee.CreatedAt = utc(ee.CreatedAt)
	return nil
}

func (r *executionRepo) ListExercises(ctx context.Context, executionID string) ([]domain.ExecutionExercise, error) {
	rows, err := r.s.q.Query(
		ctx,
		`SELECT `+executionExerciseColumns+`
			FROM execution_exercises
			WHERE execution_id = $1
			ORDER BY ord, created_at, id;`,
		executionID,
	)
	if err != nil {
		return nil, err
	}
	return rows2executionExercises(rows)
}

func (r *executionRepo) CreateSet(ctx context.Context, set *domain.ExecutionSet) error {
	newID(&set.ID)
	now := r.s.now()
	set.CreatedAt, set.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO execution_sets (`+executionSetColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		set.ID, set.ExecutionExerciseID, set.Order, set.Reps, set.Weight, set.RestSeconds, set.Completed,
		set.CreatedAt, set.UpdatedAt,
	)
	return mapError(err)
}

func (r *executionRepo) DeleteSets(ctx context.Context, executionExerciseID string) error {
	_, err := r.s.q.Exec(ctx, `DELETE FROM execution_sets WHERE execution_exercise_id = $1;`, executionExerciseID)
	return mapError(err)
}
