// Package memstore is an in-process Store guarded by a single mutex. It backs
// STORE_DRIVER=memory and the ledger tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
)

type Store struct {
	mu    sync.Mutex
	books map[string]model.Book
	loans map[string]model.Loan
	users map[string]model.User
	otps  map[string]model.OTP
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		books: map[string]model.Book{},
		loans: map[string]model.Loan{},
		users: map[string]model.User{},
		otps:  map[string]model.OTP{},
	}
}

func (s *Store) Migrate(context.Context) error { return nil }
func (s *Store) Close(context.Context) error   { return nil }

// Books

func (s *Store) CreateBook(_ context.Context, b *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.ID] = *b
	return nil
}

func (s *Store) GetBook(_ context.Context, id string) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Store) SearchBooks(_ context.Context, f model.BookFilter) ([]model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := strings.ToLower(f.Text)
	out := []model.Book{}
	for _, b := range s.books {
		if text != "" &&
			!strings.Contains(strings.ToLower(b.Title), text) &&
			!strings.Contains(strings.ToLower(b.Author), text) {
			continue
		}
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b model.Book) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) UpdateBook(_ context.Context, id string, mutate func(*model.Book)) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	mutate(&b)
	s.books[id] = b
	return &b, nil
}

func (s *Store) DeleteBook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return repository.ErrNotFound
	}
	for _, l := range s.loans {
		if l.BookID == id && l.Status == model.LoanActive {
			return repository.ErrActiveLoans
		}
	}
	delete(s.books, id)
	return nil
}

func (s *Store) CountBooks(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.books)), nil
}

// Loans

func (s *Store) IssueLoan(_ context.Context, l *model.Loan) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[l.BookID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.Available < 1 {
		return nil, repository.ErrOutOfStock
	}
	if _, ok := s.users[l.UserID]; !ok {
		return nil, repository.ErrUnknownAccount
	}
	for _, x := range s.loans {
		if x.UserID == l.UserID && x.BookID == l.BookID && x.Status == model.LoanActive {
			return nil, repository.ErrAlreadyBorrowed
		}
	}
	b.Available--
	s.books[b.ID] = b
	s.loans[l.ID] = *l
	return &b, nil
}

func (s *Store) ReturnLoan(_ context.Context, userID, loanID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[loanID]
	if !ok || l.UserID != userID || l.Status != model.LoanActive {
		return repository.ErrNotFound
	}
	l.Status = model.LoanReturned
	l.ReturnedAt = &at
	s.loans[loanID] = l
	if b, ok := s.books[l.BookID]; ok {
		b.Available = min(b.Available+1, b.Total)
		s.books[b.ID] = b
	}
	return nil
}

func (s *Store) ActiveLoan(_ context.Context, userID, loanID string) (*model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[loanID]
	if !ok || l.UserID != userID || l.Status != model.LoanActive {
		return nil, repository.ErrNotFound
	}
	b, ok := s.books[l.BookID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	l.Book = &b
	return &l, nil
}

func (s *Store) ListActiveLoans(_ context.Context, userID string) ([]model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Loan{}
	for _, l := range s.loans {
		if l.UserID != userID || l.Status != model.LoanActive {
			continue
		}
		if b, ok := s.books[l.BookID]; ok {
			l.Book = &b
		}
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b model.Loan) int { return b.BorrowedAt.Compare(a.BorrowedAt) })
	return out, nil
}

func (s *Store) CountActiveLoans(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, l := range s.loans {
		if l.Status == model.LoanActive {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountOverdueLoans(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, l := range s.loans {
		if l.Overdue(now) {
			n++
		}
	}
	return n, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if x.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UpdateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) CountUsersByRole(_ context.Context, role model.Role) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// One-time codes

func (s *Store) PutOTP(_ context.Context, o model.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[o.Email] = o
	return nil
}

func (s *Store) TakeOTP(_ context.Context, email, code string) (*model.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.otps[email]
	if !ok || o.Code != code {
		return nil, repository.ErrNotFound
	}
	delete(s.otps, email)
	return &o, nil
}

func (s *Store) PurgeExpiredOTPs(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, o := range s.otps {
		if o.Expired(now) {
			delete(s.otps, k)
			n++
		}
	}
	return n, nil
}
