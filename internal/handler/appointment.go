package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
	"github.com/rmoreira/clinic-scheduler/internal/queue"
	"github.com/rmoreira/clinic-scheduler/internal/repository"
	"github.com/rmoreira/clinic-scheduler/internal/service"
)

// AppointmentHandler exposes the appointment engine: scheduling, status
// management, cancellation and the reporting projections.
type AppointmentHandler struct {
	Appointments *repository.AppointmentRepo
	Doctors      *repository.DoctorRepo
	Patients     *repository.PatientRepo
	Nurses       *repository.NurseRepo

	// publish is swapped in tests; defaults to the RabbitMQ publisher.
	publish func(ctx context.Context, ev queue.AppointmentEvent) error
}

func NewAppointmentHandler(a *repository.AppointmentRepo, d *repository.DoctorRepo,
	p *repository.PatientRepo, n *repository.NurseRepo) *AppointmentHandler {
	return &AppointmentHandler{
		Appointments: a,
		Doctors:      d,
		Patients:     p,
		Nurses:       n,
		publish:      service.PublishAppointmentEvent,
	}
}

type scheduleReq struct {
	MedicoID     uint64    `json:"medicoId"`
	PacienteID   uint64    `json:"pacienteId"`
	EnfermeiroID *uint64   `json:"enfermeiroId"`
	DataHora     time.Time `json:"dataHora"`
	Motivo       string    `json:"motivo"`
	Observacoes  string    `json:"observacoes"`
}

type appointmentUpdateReq struct {
	DataHora    *time.Time `json:"dataHora"`
	Status      *string    `json:"status"`
	Motivo      *string    `json:"motivo"`
	Observacoes *string    `json:"observacoes"`
	Diagnostico *string    `json:"diagnostico"`
	Prescricao  *string    `json:"prescricao"`
}

// futureDate reports whether t is strictly after now. Appointments can only
// be scheduled (or rescheduled) into the future.
func futureDate(t, now time.Time) bool {
	return t.After(now)
}

// emit publishes an appointment event best-effort. Broker problems are
// logged by the publisher and never fail the request.
func (h *AppointmentHandler) emit(eventType string, a *model.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	if err := h.publish(ctx, queue.NewAppointmentEvent(eventType, a)); err != nil {
		log.Printf("appointment event not published: %v", err)
	}
}

// ownAppointmentPatient checks that a patient-role caller is the patient of
// the given appointment. Staff callers always pass.
func ownAppointmentPatient(c echo.Context, a *model.Appointment) bool {
	return !isPatientPrincipal(c) || a.Paciente.UserID == principalID(c)
}

// ownPatientID checks that a patient-role caller owns the patient profile
// with the given id. Staff callers always pass.
func (h *AppointmentHandler) ownPatientID(c echo.Context, patientID uint64) (bool, error) {
	if !isPatientPrincipal(c) {
		return true, nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Patients.GetByID(ctx, patientID)
	if err != nil {
		return false, err
	}
	return p.UserID == principalID(c), nil
}

// Schedule books a new appointment. The doctor is resolved before the
// patient so a request with two bad ids reports the missing doctor; the
// scheduled time must be strictly in the future and nothing is written until
// every check has passed.
func (h *AppointmentHandler) Schedule(c echo.Context) error {
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}

	var fields []FieldError
	if req.MedicoID == 0 {
		fields = append(fields, FieldError{Field: "medicoId", Message: "não pode estar vazio"})
	}
	if req.PacienteID == 0 {
		fields = append(fields, FieldError{Field: "pacienteId", Message: "não pode estar vazio"})
	}
	if req.DataHora.IsZero() {
		fields = append(fields, FieldError{Field: "dataHora", Message: "não pode estar vazio"})
	}
	if len(fields) > 0 {
		return validationFailed(c, "Dados da consulta inválidos", fields...)
	}
	if !futureDate(req.DataHora, time.Now()) {
		return businessError(c, "A data da consulta deve ser futura")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Doctors.GetByID(ctx, req.MedicoID); err != nil {
		return respondError(c, err)
	}
	if _, err := h.Patients.GetByID(ctx, req.PacienteID); err != nil {
		return respondError(c, err)
	}
	if req.EnfermeiroID != nil {
		if _, err := h.Nurses.GetByID(ctx, *req.EnfermeiroID); err != nil {
			return respondError(c, err)
		}
	}

	a, err := h.Appointments.Create(ctx, req.MedicoID, req.PacienteID, req.EnfermeiroID,
		req.DataHora, req.Motivo, req.Observacoes)
	if err != nil {
		return respondError(c, err)
	}
	h.emit(queue.EventScheduled, a)
	return c.JSON(http.StatusCreated, a)
}

// GetByID returns one appointment. Patients may only read their own.
func (h *AppointmentHandler) GetByID(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Appointments.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if !ownAppointmentPatient(c, a) {
		return accessDenied(c)
	}
	return c.JSON(http.StatusOK, a)
}

// List returns all appointments ordered by scheduled time.
func (h *AppointmentHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Appointments.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListByDoctor returns a doctor's appointments. The doctor must exist.
func (h *AppointmentHandler) ListByDoctor(c echo.Context) error {
	doctorID, ok := pathID(c, "medicoId")
	if !ok {
		return validationFailed(c, "ID de médico inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Doctors.GetByID(ctx, doctorID); err != nil {
		return respondError(c, err)
	}
	items, err := h.Appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListByPatient returns a patient's appointments. The patient must exist and
// patient-role callers are limited to their own.
func (h *AppointmentHandler) ListByPatient(c echo.Context) error {
	return h.patientProjection(c, h.Appointments.ListByPatient)
}

// ListUpcomingByPatient returns the patient's future appointments, soonest
// first.
func (h *AppointmentHandler) ListUpcomingByPatient(c echo.Context) error {
	return h.patientProjection(c, func(ctx context.Context, patientID uint64) ([]model.Appointment, error) {
		return h.Appointments.ListUpcomingByPatient(ctx, patientID, time.Now())
	})
}

// ListHistoryByPatient returns every appointment of the patient, most recent
// first.
func (h *AppointmentHandler) ListHistoryByPatient(c echo.Context) error {
	return h.patientProjection(c, h.Appointments.ListHistoryByPatient)
}

func (h *AppointmentHandler) patientProjection(c echo.Context,
	query func(ctx context.Context, patientID uint64) ([]model.Appointment, error)) error {
	patientID, ok := pathID(c, "pacienteId")
	if !ok {
		return validationFailed(c, "ID de paciente inválido")
	}
	own, err := h.ownPatientID(c, patientID)
	if err != nil {
		return respondError(c, err)
	}
	if !own {
		return accessDenied(c)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := query(ctx, patientID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListByStatus returns the appointments currently in the given status.
func (h *AppointmentHandler) ListByStatus(c echo.Context) error {
	status, ok := model.ParseStatus(c.Param("status"))
	if !ok {
		return validationFailed(c, "Status desconhecido: "+c.Param("status"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Appointments.ListByStatus(ctx, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListByPeriod returns the appointments scheduled between ?inicio= and ?fim=
// (RFC 3339, inclusive).
func (h *AppointmentHandler) ListByPeriod(c echo.Context) error {
	inicio, err1 := time.Parse(time.RFC3339, c.QueryParam("inicio"))
	fim, err2 := time.Parse(time.RFC3339, c.QueryParam("fim"))
	if err1 != nil || err2 != nil {
		return validationFailed(c, "Informe inicio e fim no formato RFC 3339")
	}
	if fim.Before(inicio) {
		return validationFailed(c, "fim deve ser posterior a inicio")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Appointments.ListByPeriod(ctx, inicio, fim)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListPendingNotification returns future appointments still awaiting the
// encounter (AGENDADA or CONFIRMADA); these are reminder candidates.
func (h *AppointmentHandler) ListPendingNotification(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Appointments.ListPendingNotification(ctx, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Update applies a partial appointment update. Absent fields stay untouched;
// a provided dataHora must be strictly future and a provided status must be
// a known value. Validation happens before anything is written.
func (h *AppointmentHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	var req appointmentUpdateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}
	if req.DataHora != nil && !futureDate(*req.DataHora, time.Now()) {
		return businessError(c, "A data da consulta deve ser futura")
	}
	if req.Status != nil {
		status, ok := model.ParseStatus(*req.Status)
		if !ok {
			return validationFailed(c, "Status desconhecido: "+*req.Status)
		}
		req.Status = &status
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Appointments.Update(ctx, id, repository.AppointmentUpdate{
		DataHora:    req.DataHora,
		Status:      req.Status,
		Motivo:      req.Motivo,
		Observacoes: req.Observacoes,
		Diagnostico: req.Diagnostico,
		Prescricao:  req.Prescricao,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// UpdateStatus overwrites the appointment status with ?status=. Any known
// status value is accepted; no transition table is enforced.
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}
	status, ok := model.ParseStatus(c.QueryParam("status"))
	if !ok {
		return validationFailed(c, "Status desconhecido: "+c.QueryParam("status"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Appointments.UpdateStatus(ctx, id, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Cancel sets the appointment to CANCELADA and appends the ?motivo= to the
// observations so the original notes are preserved.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}
	motivo := strings.TrimSpace(c.QueryParam("motivo"))
	if motivo == "" {
		return validationFailed(c, "Informe o motivo do cancelamento")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Appointments.Cancel(ctx, id, motivo)
	if err != nil {
		return respondError(c, err)
	}
	h.emit(queue.EventCancelled, a)
	return c.JSON(http.StatusOK, a)
}

// Delete hard-deletes an appointment.
func (h *AppointmentHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Appointments.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
