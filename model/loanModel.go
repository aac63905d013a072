// model/loan.go
package model

import "time"

// LoanPeriod is fixed at issuance; due dates never move afterwards.
const LoanPeriod = 14 * 24 * time.Hour

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

type Loan struct {
	ID         string     `json:"id" bson:"_id"`
	UserID     string     `json:"userId" bson:"user_id"`
	BookID     string     `json:"bookId" bson:"book_id"`
	BorrowedAt time.Time  `json:"borrowedAt" bson:"borrowed_at"`
	DueDate    time.Time  `json:"dueDate" bson:"due_date"`
	ReturnedAt *time.Time `json:"returnedAt" bson:"returned_at"`
	Status     LoanStatus `json:"status" bson:"status"`

	// Book is resolved on read and never persisted with the loan.
	Book *Book `json:"book,omitempty" bson:"-"`
}

// NewLoan returns an active loan borrowed at now.
func NewLoan(id, userID, bookID string, now time.Time) Loan {
	return Loan{
		ID:         id,
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueDate:    now.Add(LoanPeriod),
		Status:     LoanActive,
	}
}

// Overdue reports whether an active loan is past due at now.
func (l Loan) Overdue(now time.Time) bool {
	return l.Status == LoanActive && l.DueDate.Before(now)
}

// BorrowReq is the issue payload.
// swagger:model BorrowReq
type BorrowReq struct {
	BookID string `json:"bookId" validate:"required"`
}

// ReturnReq is the return payload.
// swagger:model ReturnReq
type ReturnReq struct {
	BorrowID string `json:"borrowId" validate:"required"`
}
