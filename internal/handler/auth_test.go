package handler

import (
	"net/http"
	"testing"
)

func TestValidateRegister(t *testing.T) {
	req := registerReq{
		Username: "  joana  ",
		Email:    " Joana@Clinica.COM ",
		Password: "s3nh4-forte",
		Nome:     "Joana Silva",
	}
	if fields := validateRegister(&req); len(fields) != 0 {
		t.Fatalf("valid request rejected: %v", fields)
	}
	if req.Username != "joana" {
		t.Fatalf("username not trimmed: %q", req.Username)
	}
	if req.Email != "joana@clinica.com" {
		t.Fatalf("email not normalized: %q", req.Email)
	}
}

func TestValidateRegisterCollectsAllFields(t *testing.T) {
	req := registerReq{Email: "sem-arroba", Password: "curta"}
	fields := validateRegister(&req)
	if len(fields) != 4 {
		t.Fatalf("field errors = %d, want 4 (username, email, password, nome)", len(fields))
	}
	seen := map[string]bool{}
	for _, f := range fields {
		seen[f.Field] = true
	}
	for _, want := range []string{"username", "email", "password", "nome"} {
		if !seen[want] {
			t.Fatalf("missing field error for %q", want)
		}
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	h := &AuthHandler{}
	c, rec := postJSON("/auth/login", `{"username":"","password":""}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Validation Failed" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	h := &AuthHandler{}
	c, rec := postJSON("/auth/refresh", `{}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	h := &AuthHandler{}
	c, rec := postJSON("/auth/register", `{"email":"x","password":"1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if len(body.ValidationErrors) == 0 {
		t.Fatal("expected per-field validation errors")
	}
}
