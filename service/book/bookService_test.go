// service/book/bookService_test.go
package booksvc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
	booksvc "github.com/kp7829294-create/libzone/service/book"
	"github.com/kp7829294-create/libzone/util/clock"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type repoMock struct {
	createFn func(ctx context.Context, b *model.Book) error
	getFn    func(ctx context.Context, id string) (*model.Book, error)
	searchFn func(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	updateFn func(ctx context.Context, id string, mutate func(*model.Book)) (*model.Book, error)
	deleteFn func(ctx context.Context, id string) error
}

var _ repository.BookRepo = (*repoMock)(nil)

func (m *repoMock) CreateBook(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) GetBook(ctx context.Context, id string) (*model.Book, error) {
	return m.getFn(ctx, id)
}
func (m *repoMock) SearchBooks(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return m.searchFn(ctx, f)
}
func (m *repoMock) UpdateBook(ctx context.Context, id string, mutate func(*model.Book)) (*model.Book, error) {
	return m.updateFn(ctx, id, mutate)
}
func (m *repoMock) DeleteBook(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }
func (m *repoMock) CountBooks(ctx context.Context) (int64, error)   { return 0, nil }

func intp(v int) *int { return &v }

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{}, clock.NewFake(now))
	_, err := s.Create(context.Background(), model.CreateBookReq{Title: "T", Author: "A", Category: "C", Image: "i"})
	require.ErrorIs(t, err, booksvc.ErrBadInput)

	_, err = s.Create(context.Background(), model.CreateBookReq{Title: " ", Author: "A", Category: "C", Image: "i", FilePublicID: "f"})
	require.ErrorIs(t, err, booksvc.ErrBadInput)
}

func TestCreate_Success(t *testing.T) {
	var stored *model.Book
	m := &repoMock{createFn: func(ctx context.Context, b *model.Book) error {
		stored = b
		return nil
	}}
	s := booksvc.New(m, clock.NewFake(now))

	b, err := s.Create(context.Background(), model.CreateBookReq{
		Title: "Clean Code", Author: "Martin", Category: "Programming",
		Image: "/c.png", FilePublicID: "pdf/c.pdf", Total: intp(5), Available: intp(9),
	})
	require.NoError(t, err)
	require.Same(t, stored, b)
	require.NotEmpty(t, b.ID)
	require.Equal(t, 5, b.Total)
	require.Equal(t, 5, b.Available)
	require.Equal(t, model.DefaultRating, b.Rating)
	require.Equal(t, now, b.CreatedAt)
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{getFn: func(ctx context.Context, id string) (*model.Book, error) {
		return nil, repository.ErrNotFound
	}}
	_, err := booksvc.New(m, clock.NewFake(now)).Detail(context.Background(), "x")
	require.ErrorIs(t, err, booksvc.ErrBookNotFound)
}

func TestSearch_TrimsFilter(t *testing.T) {
	m := &repoMock{searchFn: func(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
		require.Equal(t, model.BookFilter{Text: "go", Category: "Tech"}, f)
		return []model.Book{{ID: "1"}}, nil
	}}
	got, err := booksvc.New(m, clock.NewFake(now)).Search(context.Background(), model.BookFilter{Text: " go ", Category: "Tech "})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestUpdate_ShrinkTotalClampsAvailable(t *testing.T) {
	current := model.Book{ID: "b1", Total: 10, Available: 7}
	m := &repoMock{updateFn: func(ctx context.Context, id string, mutate func(*model.Book)) (*model.Book, error) {
		b := current
		mutate(&b)
		return &b, nil
	}}
	b, err := booksvc.New(m, clock.NewFake(now)).Update(context.Background(), "b1", model.BookPatch{Total: intp(3)})
	require.NoError(t, err)
	require.Equal(t, 3, b.Total)
	require.Equal(t, 3, b.Available)
	require.Equal(t, now, b.UpdatedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	m := &repoMock{updateFn: func(ctx context.Context, id string, mutate func(*model.Book)) (*model.Book, error) {
		return nil, repository.ErrNotFound
	}}
	_, err := booksvc.New(m, clock.NewFake(now)).Update(context.Background(), "b1", model.BookPatch{})
	require.ErrorIs(t, err, booksvc.ErrBookNotFound)
}

func TestDelete_MapsErrors(t *testing.T) {
	cases := map[error]error{
		repository.ErrNotFound:    booksvc.ErrBookNotFound,
		repository.ErrActiveLoans: booksvc.ErrActiveLoans,
		nil:                       nil,
	}
	for in, want := range cases {
		m := &repoMock{deleteFn: func(ctx context.Context, id string) error { return in }}
		err := booksvc.New(m, clock.NewFake(now)).Delete(context.Background(), "b1")
		if want == nil {
			require.NoError(t, err)
			continue
		}
		require.ErrorIs(t, err, want)
	}

	boom := errors.New("db down")
	m := &repoMock{deleteFn: func(ctx context.Context, id string) error { return boom }}
	require.ErrorIs(t, booksvc.New(m, clock.NewFake(now)).Delete(context.Background(), "b1"), boom)
}
