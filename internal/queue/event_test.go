package queue

import (
	"strings"
	"testing"
	"time"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

func sampleAppointment() *model.Appointment {
	return &model.Appointment{
		ID: 10,
		Medico: model.DoctorRef{
			ID: 3, Nome: "Dra. Helena", CRM: "12345-SP", Especialidade: model.EspCardiologia,
		},
		Paciente: model.PatientRef{ID: 7, Nome: "Carlos Souza", CPF: "123.456.789-00"},
		DataHora: time.Date(2026, 9, 15, 14, 30, 0, 0, time.UTC),
		Status:   model.StatusAgendada,
	}
}

func TestNewAppointmentEvent(t *testing.T) {
	a := sampleAppointment()
	ev := NewAppointmentEvent(EventScheduled, a)

	if ev.EventType != EventScheduled {
		t.Fatalf("eventType = %q", ev.EventType)
	}
	if ev.AppointmentID != 10 || ev.DoctorID != 3 || ev.PatientID != 7 {
		t.Fatalf("ids = (%d, %d, %d)", ev.AppointmentID, ev.DoctorID, ev.PatientID)
	}
	if ev.DoctorName != "Dra. Helena" || ev.PatientName != "Carlos Souza" {
		t.Fatalf("names = (%q, %q)", ev.DoctorName, ev.PatientName)
	}
	if !ev.DataHora.Equal(a.DataHora) {
		t.Fatalf("dataHora = %s", ev.DataHora)
	}
	if ev.Status != model.StatusAgendada {
		t.Fatalf("status = %q", ev.Status)
	}
	if ev.OccurredAt.IsZero() {
		t.Fatal("occurredAt not set")
	}
}

func TestReminderLine(t *testing.T) {
	ev := NewAppointmentEvent(EventCancelled, sampleAppointment())
	ev.OccurredAt = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	line := ReminderLine(ev)
	for _, want := range []string{
		"consulta.cancelada",
		"consulta_id=10",
		`medico="Dra. Helena" (id=3)`,
		`paciente="Carlos Souza" (id=7)`,
		"2026-09-15T14:30:00Z",
		"status=AGENDADA",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "\n") {
		t.Fatal("reminder line must be single-line")
	}
}
