package postgres

import (
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
	now  func() time.Time
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		q:    pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserRepository           { return &userRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository   { return &exerciseRepo{s} }
func (s *Store) Workouts() repository.WorkoutRepository     { return &workoutRepo{s} }
func (s *Store) Executions() repository.ExecutionRepository { return &executionRepo{s} }
func (s *Store) Goals() repository.GoalRepository           { return &goalRepo{s} }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Store{pool: s.pool, q: tx, inTx: true, now: s.now})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// Pool exposes the underlying pool, e.g. for the prometheus collector.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// mapError translates constraint violations into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return repository.ErrDuplicate
		case codeForeignKeyViolation:
			// on insert a dangling parent reads as "not found", on delete it means the row is still referenced
			if strings.HasPrefix(strings.ToLower(pgErr.Message), "update or delete") {
				return repository.ErrInUse
			}
			return repository.ErrNotFound
		}
	}
	return err
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a plain substring into an ILIKE pattern.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
