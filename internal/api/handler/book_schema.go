package handler

import "github.com/biblioteca/loan-system/internal/core/domain"

type createBookRequest struct {
	Title       string `json:"title"       validate:"required,notblank"`
	Author      string `json:"author"      validate:"required,notblank"`
	ISBN        string `json:"isbn"        validate:"required,notblank"`
	Category    string `json:"category"`
	PublishYear int    `json:"publishYear" validate:"omitempty,min=0"`
	TotalCopies *int   `json:"totalCopies" validate:"omitempty,min=0"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
}

// updateBookRequest is a partial edit. availableCopies is not accepted:
// it only moves through loans or together with totalCopies.
type updateBookRequest struct {
	Title       *string `json:"title"       validate:"omitempty,notblank"`
	Author      *string `json:"author"      validate:"omitempty,notblank"`
	ISBN        *string `json:"isbn"        validate:"omitempty,notblank"`
	Category    *string `json:"category"`
	PublishYear *int    `json:"publishYear" validate:"omitempty,min=0"`
	TotalCopies *int    `json:"totalCopies" validate:"omitempty,min=0"`
	Description *string `json:"description"`
	CoverImage  *string `json:"coverImage"`
}

func (r updateBookRequest) changes() domain.BookChanges {
	return domain.BookChanges{
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		Category:    r.Category,
		PublishYear: r.PublishYear,
		TotalCopies: r.TotalCopies,
		Description: r.Description,
		CoverImage:  r.CoverImage,
	}
}

type bookResponse struct {
	Success bool         `json:"success"`
	Book    *domain.Book `json:"book"`
}

type booksResponse struct {
	Success bool           `json:"success"`
	Books   []*domain.Book `json:"books"`
}
