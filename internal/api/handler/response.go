package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// messageResponse is the envelope for responses that carry only a message.
// Every error rendered by the API uses it with Success false.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// bindAndValidate decodes the request body into req and runs the Echo
// validator. Both failures surface as 400.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// asBadRequest turns expected caller-side domain failures into 400 while
// letting store failures reach the central error handler untouched.
func asBadRequest(err error, kinds ...domain.ErrorKind) error {
	kind := domain.KindOf(err)
	for _, k := range kinds {
		if kind == k {
			var de *domain.Error
			if errors.As(err, &de) {
				return echo.NewHTTPError(http.StatusBadRequest, de.Message)
			}
		}
	}
	return err
}
