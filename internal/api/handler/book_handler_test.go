package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

func TestBookHandler_List(t *testing.T) {
	stub := &stubCatalogService{
		listFn: func(ctx context.Context) ([]*domain.Book, error) {
			return []*domain.Book{{ID: "b1", Title: "Dune", TotalCopies: 2, AvailableCopies: 1}}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/books", "")

	if err := NewBookHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Success bool           `json:"success"`
		Books   []*domain.Book `json:"books"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || len(resp.Books) != 1 || resp.Books[0].AvailableCopies != 1 {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestBookHandler_Get_NotFound(t *testing.T) {
	stub := &stubCatalogService{
		getFn: func(ctx context.Context, id string) (*domain.Book, error) {
			return nil, domain.ErrBookNotFound
		},
	}
	c, _ := newContext(http.MethodGet, "/api/books/x", "")
	c.SetParamNames("id")
	c.SetParamValues("x")

	err := NewBookHandler(stub).Get(c)
	if !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestBookHandler_Create_Success(t *testing.T) {
	stub := &stubCatalogService{
		createFn: func(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error) {
			if in.Title != "Dune" || in.ISBN != "978-0441013593" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.TotalCopies == nil || *in.TotalCopies != 3 {
				t.Fatalf("totalCopies not forwarded: %+v", in.TotalCopies)
			}
			return &domain.Book{ID: "b1", Title: in.Title, TotalCopies: 3, AvailableCopies: 3}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/api/books",
		`{"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","totalCopies":3}`)

	if err := NewBookHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBookHandler_Create_ValidationError(t *testing.T) {
	stub := &stubCatalogService{
		createFn: func(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodPost, "/api/books", `{"title":"Dune","totalCopies":-1}`)

	err := NewBookHandler(stub).Create(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", code, err)
	}
}

func TestBookHandler_Update_ForwardsOnlyProvidedFields(t *testing.T) {
	stub := &stubCatalogService{
		updateFn: func(ctx context.Context, id string, ch domain.BookChanges) (*domain.Book, error) {
			if id != "b1" {
				t.Fatalf("unexpected id %q", id)
			}
			if ch.Title == nil || *ch.Title != "Dune Messiah" {
				t.Fatalf("title not forwarded: %+v", ch)
			}
			if ch.Author != nil || ch.TotalCopies != nil {
				t.Fatalf("unexpected fields set: %+v", ch)
			}
			return &domain.Book{ID: id, Title: *ch.Title}, nil
		},
	}
	c, rec := newContext(http.MethodPut, "/api/books/b1", `{"title":"Dune Messiah","availableCopies":99}`)
	c.SetParamNames("id")
	c.SetParamValues("b1")

	if err := NewBookHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBookHandler_Delete(t *testing.T) {
	deleted := ""
	stub := &stubCatalogService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	c, rec := newContext(http.MethodDelete, "/api/books/b1", "")
	c.SetParamNames("id")
	c.SetParamValues("b1")

	if err := NewBookHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if deleted != "b1" {
		t.Fatalf("delete not forwarded, got %q", deleted)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["message"] == "" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
