package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

func TestFutureDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if futureDate(now.Add(-time.Minute), now) {
		t.Fatal("past date accepted")
	}
	if futureDate(now, now) {
		t.Fatal("exact now accepted")
	}
	if !futureDate(now.Add(time.Minute), now) {
		t.Fatal("future date rejected")
	}
}

func postJSON(target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestScheduleRejectsMissingFields(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil)
	c, rec := postJSON("/api/consultas", `{"motivo":"dor de cabeça"}`)
	if err := h.Schedule(c); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error != "Validation Failed" {
		t.Fatalf("error = %q", body.Error)
	}
	if len(body.ValidationErrors) != 3 {
		t.Fatalf("validationErrors count = %d, want 3 (medicoId, pacienteId, dataHora)",
			len(body.ValidationErrors))
	}
}

func TestScheduleRejectsPastDate(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil)
	c, rec := postJSON("/api/consultas",
		`{"medicoId":1,"pacienteId":2,"dataHora":"2020-01-01T10:00:00Z"}`)
	if err := h.Schedule(c); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error != "Business Rule Violation" {
		t.Fatalf("error = %q", body.Error)
	}
	if body.Message != "A data da consulta deve ser futura" {
		t.Fatalf("message = %q", body.Message)
	}
}

func putJSON(target, body string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	return c, rec
}

func TestUpdateRejectsPastDateBeforeAnyLookup(t *testing.T) {
	// Repos are nil: the date check must run before any storage access.
	h := NewAppointmentHandler(nil, nil, nil, nil)
	c, rec := putJSON("/api/consultas/5", `{"dataHora":"2020-01-01T10:00:00Z"}`,
		map[string]string{"id": "5"})
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Business Rule Violation" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil)
	c, rec := putJSON("/api/consultas/5", `{"status":"PENDENTE"}`,
		map[string]string{"id": "5"})
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Validation Failed" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil)
	c, rec := putJSON("/api/consultas/5/status?status=EM_ESPERA", "",
		map[string]string{"id": "5"})
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCancelRequiresMotivo(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil)
	c, rec := putJSON("/api/consultas/5/cancelar", "",
		map[string]string{"id": "5"})
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error != "Validation Failed" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestListByPeriodValidatesRange(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/consultas/periodo?inicio=ontem&fim=hoje", nil)
	rec := httptest.NewRecorder()
	if err := h.ListByPeriod(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListByPeriod: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet,
		"/api/consultas/periodo?inicio=2026-09-02T00:00:00Z&fim=2026-09-01T00:00:00Z", nil)
	rec = httptest.NewRecorder()
	if err := h.ListByPeriod(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListByPeriod: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for inverted range", rec.Code)
	}
}

func TestOwnAppointmentPatient(t *testing.T) {
	a := &model.Appointment{Paciente: model.PatientRef{ID: 3, UserID: 9}}
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	asPrincipal(c, 7, model.RolePaciente)
	if ownAppointmentPatient(c, a) {
		t.Fatal("patient passed ownership gate for someone else's appointment")
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	asPrincipal(c, 9, model.RolePaciente)
	if !ownAppointmentPatient(c, a) {
		t.Fatal("patient denied access to own appointment")
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	asPrincipal(c, 7, model.RoleEnfermeiro)
	if !ownAppointmentPatient(c, a) {
		t.Fatal("staff denied by ownership gate")
	}
}

func TestGetByIDRejectsBadID(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil)
	c, rec := putJSON("/api/consultas/abc", "", map[string]string{"id": "abc"})
	if err := h.GetByID(c); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
