// Package queue contains the appointment event payload and the background
// consumer that turns appointment.events messages into reminder log lines.
package queue

import (
	"time"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

// Event types published to the appointment.events queue.
const (
	EventScheduled = "consulta.agendada"
	EventCancelled = "consulta.cancelada"
)

// AppointmentEvent is the message published whenever an appointment is
// scheduled or cancelled. Consumers use it to drive reminders.
type AppointmentEvent struct {
	EventType     string    `json:"eventType"`
	AppointmentID uint64    `json:"appointmentId"`
	DoctorID      uint64    `json:"doctorId"`
	DoctorName    string    `json:"doctorName"`
	PatientID     uint64    `json:"patientId"`
	PatientName   string    `json:"patientName"`
	DataHora      time.Time `json:"dataHora"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewAppointmentEvent builds the event payload for an appointment snapshot.
func NewAppointmentEvent(eventType string, a *model.Appointment) AppointmentEvent {
	return AppointmentEvent{
		EventType:     eventType,
		AppointmentID: a.ID,
		DoctorID:      a.Medico.ID,
		DoctorName:    a.Medico.Nome,
		PatientID:     a.Paciente.ID,
		PatientName:   a.Paciente.Nome,
		DataHora:      a.DataHora,
		Status:        a.Status,
		OccurredAt:    time.Now().UTC(),
	}
}
