package ports

import (
	"context"
	"time"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// IssueLoanInput carries the data needed to lend a book.
type IssueLoanInput struct {
	BookID  string
	UserID  string
	DueDate time.Time
	// IdempotencyKey is optional. Repeating the same request under a key
	// returns the loan it first produced; a different request is a conflict.
	IdempotencyKey string
}

// ListLoansInput scopes a listing. Role student restricts to UserID;
// role admin sees every loan and UserID is ignored.
type ListLoansInput struct {
	Role   string
	UserID string
	Status string // optional: active, returned or overdue
}

// LedgerService issues and closes loans while keeping book availability
// consistent with outstanding loans.
type LedgerService interface {
	IssueLoan(ctx context.Context, input IssueLoanInput) (*domain.LoanView, error)
	ReturnLoan(ctx context.Context, loanID string) (*domain.LoanView, error)
	GetLoan(ctx context.Context, loanID string) (*domain.LoanView, error)
	ListLoans(ctx context.Context, input ListLoansInput) ([]*domain.LoanView, error)
}
