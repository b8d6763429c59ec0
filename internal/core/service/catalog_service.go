package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

type CatalogService struct {
	books  ports.BookRepository
	logger zerolog.Logger
}

func NewCatalogService(books ports.BookRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{books: books, logger: logger}
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.books.FindAll(ctx)
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.FindByID(ctx, id)
}

// CreateBook adds a catalog entry with every copy on the shelf.
func (s *CatalogService) CreateBook(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error) {
	title, author, isbn := strings.TrimSpace(in.Title), strings.TrimSpace(in.Author), strings.TrimSpace(in.ISBN)
	if title == "" || author == "" || isbn == "" {
		return nil, domain.ErrInvalidBook
	}

	total := 1
	if in.TotalCopies != nil {
		total = *in.TotalCopies
	}
	if total < 0 {
		return nil, domain.ErrInvalidCopies
	}

	book := &domain.Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		Category:        in.Category,
		PublishYear:     in.PublishYear,
		TotalCopies:     total,
		AvailableCopies: total,
		Description:     in.Description,
		CoverImage:      in.CoverImage,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info().Str("book_id", book.ID).Str("isbn", book.ISBN).Int("total_copies", total).Msg("book created")
	return book, nil
}

// UpdateBook applies a partial edit. Availability is never set directly.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, changes domain.BookChanges) (*domain.Book, error) {
	if changes.TotalCopies != nil && *changes.TotalCopies < 0 {
		return nil, domain.ErrInvalidCopies
	}
	for _, f := range []*string{changes.Title, changes.Author, changes.ISBN} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return nil, domain.ErrInvalidBook
		}
	}
	if changes.Empty() {
		return s.books.FindByID(ctx, id)
	}

	book, err := s.books.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("book_id", book.ID).Msg("book updated")
	return book, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	if err := s.books.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("book_id", id).Msg("book deleted")
	return nil
}
