package ports

import (
	"context"
	"time"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// LoanFilter narrows a loan listing. Empty fields do not filter.
type LoanFilter struct {
	UserID string
	Status domain.LoanStatus // stored status only: active or returned
}

// LoanRepository persists loans.
type LoanRepository interface {
	// Create inserts the loan and fills in its ID.
	Create(ctx context.Context, l *domain.Loan) error
	FindByID(ctx context.Context, id string) (*domain.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]*domain.Loan, error)
	// MarkReturned flips an active loan to returned with returnDate = at.
	// It fails with domain.ErrLoanAlreadyReturned when the loan is not active.
	MarkReturned(ctx context.Context, id string, at time.Time) (*domain.Loan, error)
	// Reopen undoes MarkReturned: a returned loan goes back to active and
	// loses its returnDate. It fails with domain.ErrLoanNotFound when the
	// loan is not returned.
	Reopen(ctx context.Context, id string) error
}
