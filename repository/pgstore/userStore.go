package pgstore

import (
	"context"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
)

const userColumns = `id, name, email, password_hash, role, avatar, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.pool.Exec(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Avatar, u.CreatedAt)
	if pgCode(err) == pgerrcode.UniqueViolation {
		return repository.ErrEmailTaken
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(s.pool.QueryRow(ctx, q, email))
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET name = $2,
			avatar = $3,
			password_hash = $4
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, u.ID, u.Name, u.Avatar, u.PasswordHash)
	if err != nil {
		return notFound(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) CountUsersByRole(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, err
}
