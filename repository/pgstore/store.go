// Package pgstore is the PostgreSQL backend. Issue and return run as single
// transactions built on guarded updates, so no read-compute-write ever races.
package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kp7829294-create/libzone/repository"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// notFound folds "no rows" and malformed uuid keys into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgerrcode.InvalidTextRepresentation {
		return repository.ErrNotFound
	}
	return err
}
