package loansvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
	"github.com/kp7829294-create/libzone/util/apperr"
	"github.com/kp7829294-create/libzone/util/clock"
	"github.com/kp7829294-create/libzone/util/tracing"
)

// errors used by controllers

var (
	ErrBadInput        = apperr.New(apperr.Validation, "BAD_INPUT", "Missing bookId")
	ErrNotStudent      = apperr.New(apperr.Unauthorized, "NOT_STUDENT", "Only students can borrow books")
	ErrNoAccount       = apperr.New(apperr.Unauthorized, "NO_ACCOUNT", "Account not found")
	ErrBookNotFound    = apperr.New(apperr.NotFound, "BOOK_NOT_FOUND", "Book not found")
	ErrOutOfStock      = apperr.New(apperr.Conflict, "OUT_OF_STOCK", "Book out of stock")
	ErrAlreadyBorrowed = apperr.New(apperr.Conflict, "ALREADY_BORROWED", "You already borrowed this book")
	ErrLoanNotFound    = apperr.New(apperr.NotFound, "LOAN_NOT_FOUND", "Borrow not found")
	ErrNoFile          = apperr.New(apperr.NotFound, "NO_FILE", "Book file not available")
	ErrNoStorage       = apperr.New(apperr.Unavailable, "NO_STORAGE", "File storage is not configured")
	ErrUpstream        = apperr.New(apperr.Upstream, "UPSTREAM", "Failed to fetch book file")
)

// PresignTTL is how long a private PDF link stays valid.
const PresignTTL = 60 * time.Second

// Presigner hands out short-lived read URLs for private objects.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Content locates a readable PDF. ExpiresAt is nil for legacy public URLs.
type Content struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type Service interface {
	// Issue lends one copy of bookID to a student.
	Issue(ctx context.Context, caller model.Caller, bookID string) (*model.Loan, error)

	// Return closes an active loan owned by the caller and restores one copy.
	Return(ctx context.Context, caller model.Caller, loanID string) error

	// ActiveLoans lists the caller's open loans, newest first.
	ActiveLoans(ctx context.Context, userID string) ([]model.Loan, error)

	// OpenContent resolves where the PDF behind an active loan can be read.
	OpenContent(ctx context.Context, caller model.Caller, loanID string) (*Content, error)

	// StreamContent fetches the PDF server-side. The caller closes the body.
	StreamContent(ctx context.Context, caller model.Caller, loanID string) (io.ReadCloser, error)
}

// ----- Service implementation -----

type service struct {
	r      repository.LoanRepo
	files  Presigner
	http   *http.Client
	clock  clock.Clock
	tracer trace.Tracer
}

// New wires the ledger. files may be nil when no object storage is configured.
func New(r repository.LoanRepo, files Presigner, hc *http.Client, clk clock.Clock) Service {
	return &service{r: r, files: files, http: hc, clock: clk, tracer: tracing.Tracer()}
}

func (s *service) Issue(ctx context.Context, caller model.Caller, bookID string) (_ *model.Loan, err error) {
	ctx, span := s.tracer.Start(ctx, "ledger.issue", trace.WithAttributes(
		attribute.String("user.id", caller.ID),
		attribute.String("book.id", bookID),
	))
	defer func() { tracing.End(span, err) }()

	if caller.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, ErrBadInput
	}

	l := model.NewLoan(uuid.NewString(), caller.ID, bookID, s.clock.Now())
	b, err := s.r.IssueLoan(ctx, &l)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrBookNotFound
	case errors.Is(err, repository.ErrOutOfStock):
		return nil, ErrOutOfStock
	case errors.Is(err, repository.ErrAlreadyBorrowed):
		return nil, ErrAlreadyBorrowed
	case errors.Is(err, repository.ErrUnknownAccount):
		return nil, ErrNoAccount
	default:
		return nil, fmt.Errorf("issue loan: %w", err)
	}

	l.Book = b
	span.SetAttributes(attribute.String("loan.id", l.ID), attribute.Int("book.available", b.Available))
	return &l, nil
}

func (s *service) Return(ctx context.Context, caller model.Caller, loanID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "ledger.return", trace.WithAttributes(
		attribute.String("user.id", caller.ID),
		attribute.String("loan.id", loanID),
	))
	defer func() { tracing.End(span, err) }()

	if caller.Role != model.RoleStudent {
		return ErrNotStudent
	}
	loanID = strings.TrimSpace(loanID)
	if loanID == "" {
		return ErrLoanNotFound
	}

	err = s.r.ReturnLoan(ctx, caller.ID, loanID, s.clock.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLoanNotFound
	}
	if err != nil {
		return fmt.Errorf("return loan: %w", err)
	}
	return nil
}

func (s *service) ActiveLoans(ctx context.Context, userID string) ([]model.Loan, error) {
	return s.r.ListActiveLoans(ctx, userID)
}

func (s *service) OpenContent(ctx context.Context, caller model.Caller, loanID string) (_ *Content, err error) {
	ctx, span := s.tracer.Start(ctx, "ledger.open_content", trace.WithAttributes(
		attribute.String("user.id", caller.ID),
		attribute.String("loan.id", loanID),
	))
	defer func() { tracing.End(span, err) }()

	if caller.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}
	l, err := s.r.ActiveLoan(ctx, caller.ID, loanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}

	switch {
	case l.Book.FilePublicID != "":
		if s.files == nil {
			return nil, ErrNoStorage
		}
		u, err := s.files.PresignGet(ctx, l.Book.FilePublicID, PresignTTL)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", l.Book.FilePublicID, err)
		}
		exp := s.clock.Now().Add(PresignTTL)
		return &Content{URL: u, ExpiresAt: &exp}, nil
	case l.Book.FileURL != "":
		return &Content{URL: l.Book.FileURL}, nil
	default:
		return nil, ErrNoFile
	}
}

func (s *service) StreamContent(ctx context.Context, caller model.Caller, loanID string) (io.ReadCloser, error) {
	c, err := s.OpenContent(ctx, caller, loanID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, ErrUpstream.Wrap(err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, ErrUpstream.Wrap(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, ErrUpstream.Wrap(fmt.Errorf("upstream status %d", resp.StatusCode))
	}
	return resp.Body, nil
}
