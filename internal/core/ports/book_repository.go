package ports

import (
	"context"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// BookRepository is the catalog store.
type BookRepository interface {
	// Create inserts the book and fills in its ID. A duplicate isbn yields
	// domain.ErrDuplicateISBN.
	Create(ctx context.Context, b *domain.Book) error
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	// FindByIDs returns the books that exist among ids, keyed by ID.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Book, error)
	FindAll(ctx context.Context) ([]*domain.Book, error)
	// Update applies changes atomically. A TotalCopies change moves
	// AvailableCopies by the same delta and fails with domain.ErrCopiesOnLoan
	// if that would leave it negative.
	Update(ctx context.Context, id string, changes domain.BookChanges) (*domain.Book, error)
	DeleteByID(ctx context.Context, id string) error

	// ReserveCopy decrements AvailableCopies only if it is positive, in a
	// single store operation. It returns domain.ErrBookUnavailable when no
	// copy is left and domain.ErrBookNotFound when the book is gone.
	ReserveCopy(ctx context.Context, id string) (*domain.Book, error)
	// ReleaseCopy increments AvailableCopies only while it is below
	// TotalCopies. released is false when the book was already at capacity.
	ReleaseCopy(ctx context.Context, id string) (released bool, err error)
}
