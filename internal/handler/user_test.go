package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

// asPrincipal mimics what the JWT middleware stores for an authenticated
// caller.
func asPrincipal(c echo.Context, userID uint64, role string) {
	c.Set("user_id", userID)
	c.Set("role", role)
}

func getWithParam(target, name, value string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c, rec
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(nil, nil, 4)
	c, rec := postJSON("/api/users",
		`{"username":"carlos","email":"carlos@clinica.test","password":"s3nh4-forte","nome":"Carlos","role":"ADMIN"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error != "Validation Failed" {
		t.Fatalf("error = %q", body.Error)
	}
	found := false
	for _, f := range body.ValidationErrors {
		if f.Field == "role" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no validation error for role: %v", body.ValidationErrors)
	}
}

func TestUserCreateCollectsFieldErrors(t *testing.T) {
	h := NewUserHandler(nil, nil, 4)
	c, rec := postJSON("/api/users", `{"email":"sem-arroba","password":"curta"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if len(body.ValidationErrors) != 5 {
		t.Fatalf("field errors = %d, want 5 (username, email, password, nome, role)",
			len(body.ValidationErrors))
	}
}

func TestPatientCannotReadOtherUser(t *testing.T) {
	h := NewUserHandler(nil, nil, 4)
	c, rec := getWithParam("/api/users/9", "id", "9")
	asPrincipal(c, 7, model.RolePaciente)
	if err := h.GetByID(c); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Access Denied" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestPatientCannotUpdateOtherUser(t *testing.T) {
	h := NewUserHandler(nil, nil, 4)
	c, rec := putJSON("/api/users/9", `{"nome":"Outro Nome"}`, map[string]string{"id": "9"})
	asPrincipal(c, 7, model.RolePaciente)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestPatientCannotEscalateRole(t *testing.T) {
	h := NewUserHandler(nil, nil, 4)
	c, rec := putJSON("/api/users/7", `{"role":"MEDICO"}`, map[string]string{"id": "7"})
	asPrincipal(c, 7, model.RolePaciente)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestPatientCannotToggleActive(t *testing.T) {
	h := NewUserHandler(nil, nil, 4)
	c, rec := putJSON("/api/users/7", `{"active":false}`, map[string]string{"id": "7"})
	asPrincipal(c, 7, model.RolePaciente)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestStaffPassesOwnershipGate(t *testing.T) {
	// Staff reaches the storage lookup (nil repo panics), proving the 403
	// above comes from the ownership gate and not from the role itself.
	h := NewUserHandler(nil, nil, 4)
	c, _ := getWithParam("/api/users/9", "id", "9")
	asPrincipal(c, 7, model.RoleEnfermeiro)
	defer func() {
		if recover() == nil {
			t.Fatal("expected storage access for staff caller")
		}
	}()
	_ = h.GetByID(c)
}
