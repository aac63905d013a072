// Package storetest holds backend-independent checks for repository.Store.
// Each backend's tests hand it a migrated store; every check uses fresh ids,
// so a shared database can be reused between runs.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// RunLedger exercises issue and return under contention.
func RunLedger(t *testing.T, s repository.Store) {
	t.Run("concurrent issues stop at stock", func(t *testing.T) { concurrentIssuesStopAtStock(t, s) })
	t.Run("concurrent issues by one student", func(t *testing.T) { concurrentIssuesOneStudent(t, s) })
	t.Run("concurrent double return", func(t *testing.T) { concurrentDoubleReturn(t, s) })
	t.Run("return after stock cut", func(t *testing.T) { returnAfterStockCut(t, s) })
	t.Run("issue errors", func(t *testing.T) { issueErrors(t, s) })
}

func givenBook(t *testing.T, s repository.Store, total, available int) string {
	t.Helper()
	b := &model.Book{
		ID:        uuid.NewString(),
		Title:     "Concurrency in Go",
		Author:    "K. Cox-Buday",
		Category:  "Technology",
		Total:     total,
		Available: available,
		Rating:    4.5,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	require.NoError(t, s.CreateBook(context.Background(), b))
	return b.ID
}

func givenStudents(t *testing.T, s repository.Store, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		id := uuid.NewString()
		require.NoError(t, s.CreateUser(context.Background(), &model.User{
			ID:           id,
			Name:         "Student",
			Email:        id + "@campus.edu",
			PasswordHash: "x",
			Role:         model.RoleStudent,
			CreatedAt:    t0,
		}))
		ids[i] = id
	}
	return ids
}

func givenLoan(t *testing.T, s repository.Store, userID, bookID string) string {
	t.Helper()
	l := model.NewLoan(uuid.NewString(), userID, bookID, t0)
	_, err := s.IssueLoan(context.Background(), &l)
	require.NoError(t, err)
	return l.ID
}

func available(t *testing.T, s repository.Store, bookID string) (int, int) {
	t.Helper()
	b, err := s.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	return b.Available, b.Total
}

// parallel runs fn n times at once and returns each call's error.
func parallel(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func tally(errs []error, want error) (ok, matched int, other []error) {
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, want):
			matched++
		default:
			other = append(other, err)
		}
	}
	return ok, matched, other
}

func concurrentIssuesStopAtStock(t *testing.T, s repository.Store) {
	const n, k = 20, 3
	ctx := context.Background()
	bookID := givenBook(t, s, k, k)
	users := givenStudents(t, s, n)

	errs := parallel(n, func(i int) error {
		l := model.NewLoan(uuid.NewString(), users[i], bookID, t0)
		_, err := s.IssueLoan(ctx, &l)
		return err
	})

	ok, noStock, other := tally(errs, repository.ErrOutOfStock)
	require.Empty(t, other)
	assert.Equal(t, k, ok)
	assert.Equal(t, n-k, noStock)

	avail, _ := available(t, s, bookID)
	assert.Equal(t, 0, avail)

	var loans int
	for _, u := range users {
		list, err := s.ListActiveLoans(ctx, u)
		require.NoError(t, err)
		loans += len(list)
	}
	assert.Equal(t, k, loans)
}

func concurrentIssuesOneStudent(t *testing.T, s repository.Store) {
	const n = 20
	ctx := context.Background()
	bookID := givenBook(t, s, 5, 5)
	user := givenStudents(t, s, 1)[0]

	errs := parallel(n, func(int) error {
		l := model.NewLoan(uuid.NewString(), user, bookID, t0)
		_, err := s.IssueLoan(ctx, &l)
		return err
	})

	ok, dup, other := tally(errs, repository.ErrAlreadyBorrowed)
	require.Empty(t, other)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	avail, _ := available(t, s, bookID)
	assert.Equal(t, 4, avail)

	list, err := s.ListActiveLoans(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func concurrentDoubleReturn(t *testing.T, s repository.Store) {
	const n = 10
	ctx := context.Background()
	bookID := givenBook(t, s, 5, 5)
	user := givenStudents(t, s, 1)[0]
	loanID := givenLoan(t, s, user, bookID)

	errs := parallel(n, func(int) error {
		return s.ReturnLoan(ctx, user, loanID, t0.Add(time.Hour))
	})

	ok, nf, other := tally(errs, repository.ErrNotFound)
	require.Empty(t, other)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, nf)

	avail, _ := available(t, s, bookID)
	assert.Equal(t, 5, avail)

	_, err := s.ActiveLoan(ctx, user, loanID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func returnAfterStockCut(t *testing.T, s repository.Store) {
	ctx := context.Background()
	bookID := givenBook(t, s, 3, 3)
	users := givenStudents(t, s, 2)
	loanID := givenLoan(t, s, users[0], bookID)

	require.ErrorIs(t, s.ReturnLoan(ctx, users[1], loanID, t0), repository.ErrNotFound)

	// admin shrinks the shelf while the copy is still out
	_, err := s.UpdateBook(ctx, bookID, func(b *model.Book) {
		b.Total = 1
		b.Available = 1
	})
	require.NoError(t, err)

	require.NoError(t, s.ReturnLoan(ctx, users[0], loanID, t0))
	avail, total := available(t, s, bookID)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, avail)
}

func issueErrors(t *testing.T, s repository.Store) {
	ctx := context.Background()
	user := givenStudents(t, s, 1)[0]

	l := model.NewLoan(uuid.NewString(), user, uuid.NewString(), t0)
	_, err := s.IssueLoan(ctx, &l)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	empty := givenBook(t, s, 1, 0)
	l = model.NewLoan(uuid.NewString(), user, empty, t0)
	_, err = s.IssueLoan(ctx, &l)
	assert.ErrorIs(t, err, repository.ErrOutOfStock)

	bookID := givenBook(t, s, 2, 2)
	l = model.NewLoan(uuid.NewString(), uuid.NewString(), bookID, t0)
	_, err = s.IssueLoan(ctx, &l)
	assert.ErrorIs(t, err, repository.ErrUnknownAccount)

	// the failed issue must not keep the copy
	avail, _ := available(t, s, bookID)
	assert.Equal(t, 2, avail)

	b, err := s.IssueLoan(ctx, &model.Loan{
		ID: uuid.NewString(), UserID: user, BookID: bookID,
		BorrowedAt: t0, DueDate: t0.Add(model.LoanPeriod), Status: model.LoanActive,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Available)
}
