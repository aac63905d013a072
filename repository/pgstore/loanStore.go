package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
)

// IssueLoan takes one copy and records the loan in one transaction.
func (s *Store) IssueLoan(ctx context.Context, l *model.Loan) (*model.Book, error) {
	var out *model.Book
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		// Guard: only decrement while a copy is left.
		q := `
			UPDATE books
			SET available = available - 1
			WHERE id = $1
			AND available > 0
			RETURNING ` + bookColumns
		b, err := scanBook(tx.QueryRow(ctx, q, l.BookID))
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, l.BookID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return repository.ErrNotFound
			}
			return repository.ErrOutOfStock
		}
		if err != nil {
			return notFound(err)
		}

		const ins = `
			INSERT INTO loans (id, user_id, book_id, borrowed_at, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6)`
		_, err = tx.Exec(ctx, ins, l.ID, l.UserID, l.BookID, l.BorrowedAt, l.DueDate, l.Status)
		switch pgCode(err) {
		case "":
		case pgerrcode.UniqueViolation:
			return repository.ErrAlreadyBorrowed
		case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
			return repository.ErrUnknownAccount
		default:
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReturnLoan flips the loan first; a concurrent second return finds no
// active row and gets ErrNotFound.
func (s *Store) ReturnLoan(ctx context.Context, userID, loanID string, at time.Time) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const flip = `
			UPDATE loans
			SET status = 'returned',
				returned_at = $3
			WHERE id = $1
			AND user_id = $2
			AND status = 'active'
			RETURNING book_id`
		var bookID string
		if err := tx.QueryRow(ctx, flip, loanID, userID, at).Scan(&bookID); err != nil {
			return notFound(err)
		}

		const restore = `
			UPDATE books
			SET available = LEAST(available + 1, total)
			WHERE id = $1`
		_, err := tx.Exec(ctx, restore, bookID)
		return err
	})
}

const loanWithBook = `
	SELECT l.id, l.user_id, l.book_id, l.borrowed_at, l.due_date, l.returned_at, l.status,
		b.id, b.title, b.author, b.category, b.total, b.available,
		b.image, b.file_public_id, b.file_url, b.rating, b.created_at, b.updated_at
	FROM loans l
	JOIN books b ON b.id = l.book_id`

func scanLoan(row pgx.Row) (*model.Loan, error) {
	var (
		l model.Loan
		b model.Book
	)
	err := row.Scan(
		&l.ID, &l.UserID, &l.BookID, &l.BorrowedAt, &l.DueDate, &l.ReturnedAt, &l.Status,
		&b.ID, &b.Title, &b.Author, &b.Category, &b.Total, &b.Available,
		&b.Image, &b.FilePublicID, &b.FileURL, &b.Rating, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Book = &b
	return &l, nil
}

func (s *Store) ActiveLoan(ctx context.Context, userID, loanID string) (*model.Loan, error) {
	q := loanWithBook + `
		WHERE l.id = $1
		AND l.user_id = $2
		AND l.status = 'active'`
	l, err := scanLoan(s.pool.QueryRow(ctx, q, loanID, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (s *Store) ListActiveLoans(ctx context.Context, userID string) ([]model.Loan, error) {
	q := loanWithBook + `
		WHERE l.user_id = $1
		AND l.status = 'active'
		ORDER BY l.borrowed_at DESC, l.id DESC`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *Store) CountActiveLoans(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM loans WHERE status = 'active'`).Scan(&n)
	return n, err
}

func (s *Store) CountOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM loans WHERE status = 'active' AND due_date < $1`, now,
	).Scan(&n)
	return n, err
}
