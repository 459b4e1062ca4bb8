package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/repository"
)

// FieldError is one entry of the validationErrors list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope every error response uses.
type ErrorResponse struct {
	Timestamp        time.Time    `json:"timestamp"`
	Status           int          `json:"status"`
	Error            string       `json:"error"`
	Message          string       `json:"message"`
	Path             string       `json:"path"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
}

func envelope(c echo.Context, status int, label, message string, fields ...FieldError) error {
	return c.JSON(status, ErrorResponse{
		Timestamp:        time.Now().UTC(),
		Status:           status,
		Error:            label,
		Message:          message,
		Path:             c.Request().URL.Path,
		ValidationErrors: fields,
	})
}

func notFound(c echo.Context, message string) error {
	return envelope(c, http.StatusNotFound, "Resource Not Found", message)
}

func businessError(c echo.Context, message string) error {
	return envelope(c, http.StatusBadRequest, "Business Rule Violation", message)
}

func validationFailed(c echo.Context, message string, fields ...FieldError) error {
	return envelope(c, http.StatusBadRequest, "Validation Failed", message, fields...)
}

func authFailed(c echo.Context, message string) error {
	return envelope(c, http.StatusUnauthorized, "Authentication Failed", message)
}

func accessDenied(c echo.Context) error {
	return envelope(c, http.StatusForbidden, "Access Denied",
		"Você não tem permissão para acessar este recurso")
}

// respondError translates repository errors into the shared envelope. Unknown
// errors are logged and reported as a generic 500.
func respondError(c echo.Context, err error) error {
	var nf *repository.NotFoundError
	if errors.As(err, &nf) {
		return notFound(c, nf.Error())
	}
	var be *repository.BusinessError
	if errors.As(err, &be) {
		return businessError(c, be.Error())
	}
	log.Printf("internal error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return envelope(c, http.StatusInternalServerError, "Internal Server Error",
		"Ocorreu um erro inesperado")
}
