package ports

import (
	"context"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

type AuthService interface {
	// Login verifies credentials and returns a signed token with the user.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
