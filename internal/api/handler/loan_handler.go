package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/core/ports"
	"github.com/biblioteca/loan-system/internal/pkg/metrics"
)

// LoanHandler handles HTTP requests for the loan ledger.
type LoanHandler struct {
	service ports.LedgerService
}

func NewLoanHandler(service ports.LedgerService) *LoanHandler {
	return &LoanHandler{service: service}
}

// List handles GET /api/loans. Admins see every loan, students their own.
//
// @Summary      List loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "active, returned or overdue"
// @Success      200     {object}  loansResponse
// @Failure      400     {object}  messageResponse
// @Failure      401     {object}  messageResponse
// @Failure      500     {object}  messageResponse
// @Router       /api/loans [get]
func (h *LoanHandler) List(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	loans, err := h.service.ListLoans(c.Request().Context(), ports.ListLoansInput{
		Role:   role,
		UserID: userID,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loansResponse{Success: true, Loans: loans})
}

// Get handles GET /api/loans/:id. Students may only read their own loans.
//
// @Summary      Get a loan
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Loan id"
// @Success      200  {object}  loanResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/loans/{id} [get]
func (h *LoanHandler) Get(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	loan, err := h.service.GetLoan(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin && loan.UserID != userID {
		return domain.ErrLoanNotFound
	}
	return c.JSON(http.StatusOK, loanResponse{Success: true, Loan: loan})
}

// Issue handles POST /api/loans.
//
// @Summary      Lend a book
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Repeating the same request returns the loan first created with this key"
// @Param        body             body      issueLoanRequest  true   "Loan"
// @Success      200              {object}  loanResponse
// @Failure      400              {object}  messageResponse
// @Failure      403              {object}  messageResponse
// @Failure      409              {object}  messageResponse
// @Failure      500              {object}  messageResponse
// @Router       /api/loans [post]
func (h *LoanHandler) Issue(c echo.Context) error {
	var req issueLoanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	due, ok := parseDueDate(req.DueDate)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "dueDate must be a date (YYYY-MM-DD or RFC 3339)")
	}

	loan, err := h.service.IssueLoan(c.Request().Context(), ports.IssueLoanInput{
		BookID:         req.BookID,
		UserID:         req.UserID,
		DueDate:        due,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		metrics.LoanFailuresTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return asBadRequest(err, domain.KindNotFound, domain.KindUnavailable)
	}
	metrics.LoansIssuedTotal.Inc()

	return c.JSON(http.StatusOK, loanResponse{Success: true, Loan: loan})
}

// Return handles PUT /api/loans/:id/return.
//
// @Summary      Return a loaned book
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Loan id"
// @Success      200  {object}  loanResponse
// @Failure      404  {object}  messageResponse
// @Failure      409  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/loans/{id}/return [put]
func (h *LoanHandler) Return(c echo.Context) error {
	loan, err := h.service.ReturnLoan(c.Request().Context(), c.Param("id"))
	if err != nil {
		metrics.LoanFailuresTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return err
	}
	metrics.LoansReturnedTotal.Inc()

	return c.JSON(http.StatusOK, loanResponse{Success: true, Loan: loan})
}
