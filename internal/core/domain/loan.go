package domain

import "time"

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
	// LoanOverdue is never stored. It is derived from an active loan whose
	// due date has passed.
	LoanOverdue LoanStatus = "overdue"
)

// ParseLoanStatus accepts the statuses a caller may filter by.
func ParseLoanStatus(s string) (LoanStatus, bool) {
	switch LoanStatus(s) {
	case LoanActive, LoanReturned, LoanOverdue:
		return LoanStatus(s), true
	}
	return "", false
}

// Loan records one book lent to one user.
type Loan struct {
	ID         string     `json:"id"`
	BookID     string     `json:"bookId"`
	UserID     string     `json:"userId"`
	LoanDate   time.Time  `json:"loanDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
	Status     LoanStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// StatusAt returns the status as seen at now, deriving overdue for active
// loans past their due date.
func (l *Loan) StatusAt(now time.Time) LoanStatus {
	if l.Status == LoanActive && now.After(l.DueDate) {
		return LoanOverdue
	}
	return l.Status
}

// LoanView is a loan joined with its book and borrower at read time.
// Book or User is nil when the referenced record no longer exists.
type LoanView struct {
	Loan
	Book *Book     `json:"book"`
	User *Borrower `json:"user"`
}
