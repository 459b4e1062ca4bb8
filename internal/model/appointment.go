package model

import (
	"strings"
	"time"
)

// Appointment status values. A new appointment always starts as AGENDADA;
// CONFIRMADA marks patient confirmation and REALIZADA, CANCELADA and
// NAO_COMPARECEU are the terminal outcomes.
const (
	StatusAgendada      = "AGENDADA"
	StatusConfirmada    = "CONFIRMADA"
	StatusRealizada     = "REALIZADA"
	StatusCancelada     = "CANCELADA"
	StatusNaoCompareceu = "NAO_COMPARECEU"
)

// ParseStatus normalizes a status string and reports whether it is one of
// the known appointment statuses.
func ParseStatus(s string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case StatusAgendada, StatusConfirmada, StatusRealizada,
		StatusCancelada, StatusNaoCompareceu:
		return v, true
	}
	return "", false
}

// DoctorRef is the doctor summary embedded in appointment responses.
type DoctorRef struct {
	ID            uint64 `json:"id"`
	Nome          string `json:"nome"`
	CRM           string `json:"crm"`
	Especialidade string `json:"especialidade"`
}

// PatientRef is the patient summary embedded in appointment responses.
// UserID carries the owning account for ownership checks and stays off the
// wire.
type PatientRef struct {
	ID     uint64 `json:"id"`
	UserID uint64 `json:"-"`
	Nome   string `json:"nome"`
	CPF    string `json:"cpf"`
}

// NurseRef is the optional nurse summary embedded in appointment responses.
type NurseRef struct {
	ID    uint64 `json:"id"`
	Nome  string `json:"nome"`
	COREN string `json:"coren"`
	Setor string `json:"setor,omitempty"`
}

// Appointment represents a row in the `appointments` table joined with the
// summary data of its doctor, patient and optional nurse. The free-text
// fields (motivo, observacoes, diagnostico, prescricao) are nullable in the
// schema and empty strings here.
//
// DataAlteracao is nil until the first successful mutation after creation.
type Appointment struct {
	ID            uint64     `json:"id"`
	Medico        DoctorRef  `json:"medico"`
	Paciente      PatientRef `json:"paciente"`
	Enfermeiro    *NurseRef  `json:"enfermeiro,omitempty"`
	DataHora      time.Time  `json:"dataHora"`
	Status        string     `json:"status"`
	Motivo        string     `json:"motivo,omitempty"`
	Observacoes   string     `json:"observacoes,omitempty"`
	Diagnostico   string     `json:"diagnostico,omitempty"`
	Prescricao    string     `json:"prescricao,omitempty"`
	DataCriacao   time.Time  `json:"dataCriacao"`
	DataAlteracao *time.Time `json:"dataAlteracao,omitempty"`
}
