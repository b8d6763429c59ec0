package handler

import (
	"time"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

type issueLoanRequest struct {
	BookID string `json:"bookId"  validate:"required"`
	UserID string `json:"userId"  validate:"required"`
	// DueDate accepts RFC 3339 or a bare calendar date (end of that day, UTC).
	DueDate string `json:"dueDate" validate:"required"`
}

// parseDueDate reads the formats browsers commonly send for a date input.
func parseDueDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Add(24*time.Hour - time.Second), true
	}
	return time.Time{}, false
}

type loanResponse struct {
	Success bool             `json:"success"`
	Loan    *domain.LoanView `json:"loan"`
}

type loansResponse struct {
	Success bool               `json:"success"`
	Loans   []*domain.LoanView `json:"loans"`
}

type usersResponse struct {
	Success bool               `json:"success"`
	Users   []*domain.Borrower `json:"users"`
}
