package handler

import (
	"strings"
	"testing"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

func TestValidator_BookBodyUsesJSONNames(t *testing.T) {
	negative := -1
	err := NewValidator().Validate(&createBookRequest{Title: "Dune", Author: "  ", TotalCopies: &negative})

	if domain.KindOf(err) != domain.KindInvalid {
		t.Fatalf("expected invalid kind, got %v", err)
	}
	for _, want := range []string{"author must not be blank", "isbn is required", "totalCopies must be at least 0"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("message %q missing %q", err.Error(), want)
		}
	}
}

func TestValidator_PartialBookEdit(t *testing.T) {
	v := NewValidator()
	blank := " "
	zero := 0

	if err := v.Validate(&updateBookRequest{TotalCopies: &zero}); err != nil {
		t.Fatalf("absent fields should pass, got %v", err)
	}
	err := v.Validate(&updateBookRequest{Title: &blank})
	if err == nil || err.Error() != "title must not be blank" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidator_LoanBody(t *testing.T) {
	err := NewValidator().Validate(&issueLoanRequest{BookID: "b1"})

	if err == nil || err.Error() != "userId is required; dueDate is required" {
		t.Fatalf("unexpected error %v", err)
	}
}
