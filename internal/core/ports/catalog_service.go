package ports

import (
	"context"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// CreateBookInput carries a new catalog entry. TotalCopies nil means 1.
type CreateBookInput struct {
	Title       string
	Author      string
	ISBN        string
	Category    string
	PublishYear int
	TotalCopies *int
	Description string
	CoverImage  string
}

// CatalogService defines use-case operations on books.
type CatalogService interface {
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error)
	UpdateBook(ctx context.Context, id string, changes domain.BookChanges) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
}
