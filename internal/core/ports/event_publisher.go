package ports

import "github.com/biblioteca/loan-system/internal/core/domain"

// LoanEventPublisher hands committed ledger transitions to downstream
// consumers. Publish must not block the caller on broker I/O.
type LoanEventPublisher interface {
	Publish(event domain.LoanEvent)
}
