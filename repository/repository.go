// Package repository holds the record-store contract shared by the
// postgres, mongo and in-memory backends.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kp7829294-create/libzone/model"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrOutOfStock      = errors.New("no copies available")
	ErrAlreadyBorrowed = errors.New("active loan already exists")
	ErrActiveLoans     = errors.New("book has active loans")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUnknownAccount  = errors.New("account does not exist")
)

type BookRepo interface {
	CreateBook(ctx context.Context, b *model.Book) error
	GetBook(ctx context.Context, id string) (*model.Book, error)
	SearchBooks(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	// UpdateBook runs mutate against the locked current row and persists the result.
	UpdateBook(ctx context.Context, id string, mutate func(*model.Book)) (*model.Book, error)
	// DeleteBook refuses with ErrActiveLoans while any active loan references the book.
	DeleteBook(ctx context.Context, id string) error
	CountBooks(ctx context.Context) (int64, error)
}

// LoanRepo is the ledger's storage side. IssueLoan and ReturnLoan are atomic units.
type LoanRepo interface {
	// IssueLoan decrements available (guarded at > 0) and inserts l.
	// Fails with ErrNotFound, ErrOutOfStock, ErrAlreadyBorrowed or ErrUnknownAccount.
	IssueLoan(ctx context.Context, l *model.Loan) (*model.Book, error)
	// ReturnLoan flips an active loan owned by userID to returned and restores
	// one copy, capped at total. Fails with ErrNotFound.
	ReturnLoan(ctx context.Context, userID, loanID string, at time.Time) error
	// ActiveLoan returns an active loan owned by userID with its book resolved.
	ActiveLoan(ctx context.Context, userID, loanID string) (*model.Loan, error)
	ListActiveLoans(ctx context.Context, userID string) ([]model.Loan, error)
	CountActiveLoans(ctx context.Context) (int64, error)
	CountOverdueLoans(ctx context.Context, now time.Time) (int64, error)
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	CountUsersByRole(ctx context.Context, role model.Role) (int64, error)
}

type OTPRepo interface {
	// PutOTP replaces any live code for the email.
	PutOTP(ctx context.Context, o model.OTP) error
	// TakeOTP deletes and returns the matching code; ErrNotFound when absent.
	TakeOTP(ctx context.Context, email, code string) (*model.OTP, error)
	PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

// Store is one backend implementing every repo.
type Store interface {
	BookRepo
	LoanRepo
	UserRepo
	OTPRepo
	// Migrate brings the schema or indexes up to date. Safe to call on every start.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}
