package domain

import "time"

// LoanEventType names a ledger transition announced to downstream consumers.
type LoanEventType string

const (
	LoanIssuedEvent   LoanEventType = "loan.issued"
	LoanReturnedEvent LoanEventType = "loan.returned"
)

// LoanEvent is emitted after a ledger transition has been committed.
type LoanEvent struct {
	ID         string        `json:"id"`
	Type       LoanEventType `json:"type"`
	LoanID     string        `json:"loan_id"`
	BookID     string        `json:"book_id"`
	UserID     string        `json:"user_id"`
	DueDate    time.Time     `json:"due_date"`
	OccurredAt time.Time     `json:"occurred_at"`
}
