package booksvc

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
	"github.com/kp7829294-create/libzone/util/apperr"
	"github.com/kp7829294-create/libzone/util/clock"
)

var (
	ErrBadInput     = apperr.New(apperr.Validation, "BAD_INPUT", "Missing fields")
	ErrBookNotFound = apperr.New(apperr.NotFound, "BOOK_NOT_FOUND", "Book not found")
	ErrActiveLoans  = apperr.New(apperr.Conflict, "ACTIVE_LOANS", "Book has active loans")
)

type Service interface {
	Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error)
	Detail(ctx context.Context, id string) (*model.Book, error)
	Search(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	// Update applies an administrative edit, including the stock override.
	Update(ctx context.Context, id string, p model.BookPatch) (*model.Book, error)
	// Delete is refused while the book has active loans.
	Delete(ctx context.Context, id string) error
}

type service struct {
	r     repository.BookRepo
	clock clock.Clock
}

func New(r repository.BookRepo, clk clock.Clock) Service { return &service{r: r, clock: clk} }

func (s *service) Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error) {
	for _, v := range []string{req.Title, req.Author, req.Category, req.Image, req.FilePublicID} {
		if strings.TrimSpace(v) == "" {
			return nil, ErrBadInput
		}
	}

	b := model.NewBook(req)
	b.ID = uuid.NewString()
	b.CreatedAt = s.clock.Now()
	b.UpdatedAt = b.CreatedAt
	if err := s.r.CreateBook(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *service) Detail(ctx context.Context, id string) (*model.Book, error) {
	b, err := s.r.GetBook(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookNotFound
	}
	return b, err
}

func (s *service) Search(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	f.Text = strings.TrimSpace(f.Text)
	f.Category = strings.TrimSpace(f.Category)
	return s.r.SearchBooks(ctx, f)
}

func (s *service) Update(ctx context.Context, id string, p model.BookPatch) (*model.Book, error) {
	now := s.clock.Now()
	b, err := s.r.UpdateBook(ctx, id, func(b *model.Book) {
		p.Apply(b)
		b.UpdatedAt = now
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookNotFound
	}
	return b, err
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.r.DeleteBook(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrBookNotFound
	case errors.Is(err, repository.ErrActiveLoans):
		return ErrActiveLoans
	}
	return err
}
