package ports

import (
	"context"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// RegisterUserInput carries the fields needed to create a user.
type RegisterUserInput struct {
	Username string
	Password string
	Role     string
	Name     string
	Email    string
}

// UserService exposes the borrower directory.
type UserService interface {
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)
}
