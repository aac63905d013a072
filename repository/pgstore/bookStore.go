package pgstore

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
)

const dialectPostgres = "postgres"

var bookColumnNames = []any{
	"id", "title", "author", "category", "total", "available",
	"image", "file_public_id", "file_url", "rating", "created_at", "updated_at",
}

const bookColumns = `id, title, author, category, total, available,
	image, file_public_id, file_url, rating, created_at, updated_at`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Category, &b.Total, &b.Available,
		&b.Image, &b.FilePublicID, &b.FileURL, &b.Rating, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) CreateBook(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := s.pool.Exec(ctx, q,
		b.ID, b.Title, b.Author, b.Category, b.Total, b.Available,
		b.Image, b.FilePublicID, b.FileURL, b.Rating, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *Store) GetBook(ctx context.Context, id string) (*model.Book, error) {
	q := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	b, err := scanBook(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// escapeLike makes user text match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// searchQuery builds the catalog search: title OR author contains text
// (case-insensitive), AND exact category, newest first.
func searchQuery(f model.BookFilter) (string, []any, error) {
	var where []goqu.Expression
	if f.Text != "" {
		pattern := "%" + escapeLike(f.Text) + "%"
		where = append(where, goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
		))
	}
	if f.Category != "" {
		where = append(where, goqu.C("category").Eq(f.Category))
	}

	ds := goqu.Dialect(dialectPostgres).
		From("books").
		Select(bookColumnNames...).
		Order(goqu.C("created_at").Desc()).
		Prepared(true)
	if len(where) > 0 {
		ds = ds.Where(where...)
	}
	return ds.ToSQL()
}

func (s *Store) SearchBooks(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	q, args, err := searchQuery(f)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBook(ctx context.Context, id string, mutate func(*model.Book)) (*model.Book, error) {
	var out *model.Book
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		q := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
		b, err := scanBook(tx.QueryRow(ctx, q, id))
		if err != nil {
			return notFound(err)
		}

		mutate(b)

		const upd = `
			UPDATE books
			SET title = $2, author = $3, category = $4, total = $5, available = $6,
				image = $7, file_url = $8, rating = $9, updated_at = $10
			WHERE id = $1`
		if _, err := tx.Exec(ctx, upd,
			b.ID, b.Title, b.Author, b.Category, b.Total, b.Available,
			b.Image, b.FileURL, b.Rating, b.UpdatedAt,
		); err != nil {
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

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return notFound(err)
		}

		var active bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM loans WHERE book_id = $1 AND status = 'active')`, id,
		).Scan(&active); err != nil {
			return err
		}
		if active {
			return repository.ErrActiveLoans
		}

		_, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		return err
	})
}

func (s *Store) CountBooks(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&n)
	return n, err
}
