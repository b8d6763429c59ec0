package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubCatalogService struct {
	listFn   func(ctx context.Context) ([]*domain.Book, error)
	getFn    func(ctx context.Context, id string) (*domain.Book, error)
	createFn func(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error)
	updateFn func(ctx context.Context, id string, ch domain.BookChanges) (*domain.Book, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubCatalogService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.listFn(ctx)
}

func (s *stubCatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) CreateBook(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error) {
	return s.createFn(ctx, in)
}

func (s *stubCatalogService) UpdateBook(ctx context.Context, id string, ch domain.BookChanges) (*domain.Book, error) {
	return s.updateFn(ctx, id, ch)
}

func (s *stubCatalogService) DeleteBook(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubLedgerService struct {
	issueFn  func(ctx context.Context, in ports.IssueLoanInput) (*domain.LoanView, error)
	returnFn func(ctx context.Context, id string) (*domain.LoanView, error)
	getFn    func(ctx context.Context, id string) (*domain.LoanView, error)
	listFn   func(ctx context.Context, in ports.ListLoansInput) ([]*domain.LoanView, error)
}

func (s *stubLedgerService) IssueLoan(ctx context.Context, in ports.IssueLoanInput) (*domain.LoanView, error) {
	return s.issueFn(ctx, in)
}

func (s *stubLedgerService) ReturnLoan(ctx context.Context, id string) (*domain.LoanView, error) {
	return s.returnFn(ctx, id)
}

func (s *stubLedgerService) GetLoan(ctx context.Context, id string) (*domain.LoanView, error) {
	return s.getFn(ctx, id)
}

func (s *stubLedgerService) ListLoans(ctx context.Context, in ports.ListLoansInput) ([]*domain.LoanView, error) {
	return s.listFn(ctx, in)
}

type stubUserService struct {
	listFn func(ctx context.Context, role string) ([]*domain.User, error)
}

func (s *stubUserService) Register(context.Context, ports.RegisterUserInput) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUserService) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	return s.listFn(ctx, role)
}

// newContext builds an Echo context with the package validator installed.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// httpStatus returns the code carried by an *echo.HTTPError, or 0.
func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func withClaims(c echo.Context, role, userID string) {
	c.Set("role", role)
	c.Set("user_id", userID)
}
