package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/repository"
)

func ctxAndRecorder(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return body
}

func TestRespondErrorNotFound(t *testing.T) {
	c, rec := ctxAndRecorder(http.MethodGet, "/api/medicos/42")
	err := respondError(c, &repository.NotFoundError{Entity: "Médico", Field: "ID", Value: 42})
	if err != nil {
		t.Fatalf("respondError: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error != "Resource Not Found" {
		t.Fatalf("error = %q", body.Error)
	}
	if body.Message != "Médico não encontrado com ID: '42'" {
		t.Fatalf("message = %q", body.Message)
	}
	if body.Path != "/api/medicos/42" {
		t.Fatalf("path = %q", body.Path)
	}
	if body.Status != http.StatusNotFound {
		t.Fatalf("status field = %d", body.Status)
	}
	if body.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}

func TestRespondErrorBusinessRule(t *testing.T) {
	c, rec := ctxAndRecorder(http.MethodPost, "/api/medicos")
	if err := respondError(c, &repository.BusinessError{Message: "CRM já existe: 12345-SP"}); err != nil {
		t.Fatalf("respondError: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error != "Business Rule Violation" {
		t.Fatalf("error = %q", body.Error)
	}
	if body.Message != "CRM já existe: 12345-SP" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestRespondErrorUnknown(t *testing.T) {
	c, rec := ctxAndRecorder(http.MethodGet, "/api/users")
	if err := respondError(c, errors.New("connection reset")); err != nil {
		t.Fatalf("respondError: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error != "Internal Server Error" {
		t.Fatalf("error = %q", body.Error)
	}
	if body.Message == "connection reset" {
		t.Fatal("internal error detail leaked to client")
	}
}

func TestValidationFailedFields(t *testing.T) {
	c, rec := ctxAndRecorder(http.MethodPost, "/auth/register")
	err := validationFailed(c, "Dados de cadastro inválidos",
		FieldError{Field: "email", Message: "deve ser um email válido"},
		FieldError{Field: "password", Message: "deve ter no mínimo 6 caracteres"})
	if err != nil {
		t.Fatalf("validationFailed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error != "Validation Failed" {
		t.Fatalf("error = %q", body.Error)
	}
	if len(body.ValidationErrors) != 2 {
		t.Fatalf("validationErrors count = %d, want 2", len(body.ValidationErrors))
	}
	if body.ValidationErrors[0].Field != "email" {
		t.Fatalf("first field = %q", body.ValidationErrors[0].Field)
	}
}

func TestAuthAndAccessEnvelopes(t *testing.T) {
	c, rec := ctxAndRecorder(http.MethodPost, "/auth/login")
	if err := authFailed(c, "Credenciais inválidas"); err != nil {
		t.Fatalf("authFailed: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Authentication Failed" {
		t.Fatalf("error = %q", body.Error)
	}

	c, rec = ctxAndRecorder(http.MethodGet, "/api/pacientes/9")
	if err := accessDenied(c); err != nil {
		t.Fatalf("accessDenied: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Access Denied" {
		t.Fatalf("error = %q", body.Error)
	}
}
