package ports

import "context"

// Transactor runs fn as one unit of work. Repositories called with the ctx
// handed to fn take part in it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
