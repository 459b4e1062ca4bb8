package handler

import (
	"net/http"
	"testing"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

func TestPatientCannotResolveOtherProfileByUser(t *testing.T) {
	h := NewPatientHandler(nil)
	c, rec := getWithParam("/api/pacientes/usuario/9", "userId", "9")
	asPrincipal(c, 7, model.RolePaciente)
	if err := h.GetByUserID(c); err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Access Denied" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestPatientCannotChangeOwnCPF(t *testing.T) {
	h := NewPatientHandler(nil)
	c, rec := putJSON("/api/pacientes/3", `{"cpf":"999.999.999-99"}`,
		map[string]string{"id": "3"})
	asPrincipal(c, 7, model.RolePaciente)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestPatientCannotToggleOwnAtivo(t *testing.T) {
	h := NewPatientHandler(nil)
	c, rec := putJSON("/api/pacientes/3", `{"ativo":false}`,
		map[string]string{"id": "3"})
	asPrincipal(c, 7, model.RolePaciente)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestStaffSkipsPatientOwnershipLookup(t *testing.T) {
	// ownPatient short-circuits for staff without touching storage.
	h := NewPatientHandler(nil)
	c, _ := getWithParam("/api/pacientes/3", "id", "3")
	asPrincipal(c, 7, model.RoleMedico)
	own, err := h.ownPatient(c, 3)
	if err != nil {
		t.Fatalf("ownPatient: %v", err)
	}
	if !own {
		t.Fatal("staff caller failed the ownership gate")
	}
}
