package ports

import (
	"context"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// UserRepository is the borrower directory.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)
}
