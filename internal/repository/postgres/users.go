package postgres

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
)

const userColumns = `id, name, email, password_hash, weight, height, age, photo_key, created_at, updated_at`

type userRepo struct{ s *Store }

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Weight, &u.Height, &u.Age, &u.PhotoKey, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	u.CreatedAt = utc(u.CreatedAt)
	u.UpdatedAt = utc(u.UpdatedAt)
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	newID(&user.ID)
	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.s.q.Exec(
		ctx,
		`INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Weight, user.Height, user.Age, user.PhotoKey,
		user.CreatedAt, user.UpdatedAt,
	)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	return scanUser(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	return scanUser(row)
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = r.s.now()
	err := r.s.q.QueryRow(
		ctx,
		`UPDATE users SET name = $1, email = $2, password_hash = $3, weight = $4, height = $5, age = $6,
				photo_key = $7, updated_at = $8
			WHERE id = $9
			RETURNING created_at;`,
		user.Name, user.Email, user.PasswordHash, user.Weight, user.Height, user.Age, user.PhotoKey,
		user.UpdatedAt, user.ID,
	).Scan(&user.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	user.CreatedAt = utc(user.CreatedAt)
	return nil
}

// Delete relies on ON DELETE CASCADE for everything the user owns. Public exercises are
// detached first so other users' templates keep working; run it inside WithTx.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.s.q.Exec(
		ctx,
		`UPDATE exercises SET owner_id = NULL, updated_at = $2 WHERE owner_id = $1 AND public;`,
		id, r.s.now(),
	); err != nil {
		return mapError(err)
	}

	tag, err := r.s.q.Exec(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*userRepo)(nil)
