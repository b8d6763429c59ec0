package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/loan-system/internal/core/ports"
	"github.com/biblioteca/loan-system/internal/pkg/metrics"
)

// BookHandler handles HTTP requests for the catalog.
type BookHandler struct {
	service ports.CatalogService
}

func NewBookHandler(service ports.CatalogService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /api/books.
//
// @Summary      List all books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  booksResponse
// @Failure      401  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/books [get]
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.service.ListBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booksResponse{Success: true, Books: books})
}

// Get handles GET /api/books/:id.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book id"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	book, err := h.service.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookResponse{Success: true, Book: book})
}

// Create handles POST /api/books.
//
// @Summary      Add a book to the catalog
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookRequest  true  "Book"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/books [post]
func (h *BookHandler) Create(c echo.Context) error {
	var req createBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	book, err := h.service.CreateBook(c.Request().Context(), ports.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		PublishYear: req.PublishYear,
		TotalCopies: req.TotalCopies,
		Description: req.Description,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		return err
	}
	metrics.BooksCreatedTotal.Inc()

	return c.JSON(http.StatusOK, bookResponse{Success: true, Book: book})
}

// Update handles PUT /api/books/:id.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Book id"
// @Param        body  body      updateBookRequest  true  "Fields to change"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	var req updateBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	book, err := h.service.UpdateBook(c.Request().Context(), c.Param("id"), req.changes())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookResponse{Success: true, Book: book})
}

// Delete handles DELETE /api/books/:id.
//
// @Summary      Remove a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "book deleted"})
}
