package model

import "strings"

// Medical specialties accepted for doctors.especialidade.
const (
	EspCardiologia  = "CARDIOLOGIA"
	EspDermatologia = "DERMATOLOGIA"
	EspNeurologia   = "NEUROLOGIA"
	EspOrtopedia    = "ORTOPEDIA"
	EspPediatria    = "PEDIATRIA"
	EspPsiquiatria  = "PSIQUIATRIA"
	EspClinicaGeral = "CLINICA_GERAL"
)

// ParseEspecialidade normalizes a specialty string and reports whether it is
// one of the known values.
func ParseEspecialidade(s string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case EspCardiologia, EspDermatologia, EspNeurologia, EspOrtopedia,
		EspPediatria, EspPsiquiatria, EspClinicaGeral:
		return v, true
	}
	return "", false
}

// Doctor represents a row in the `doctors` table. Each doctor extends one
// user account with a unique CRM license number and a specialty.
type Doctor struct {
	ID            uint64 `json:"id"`
	UserID        uint64 `json:"userId"`
	Nome          string `json:"nome"` // joined from users.nome
	CRM           string `json:"crm"`
	Especialidade string `json:"especialidade"`
	Descricao     string `json:"descricao,omitempty"`
	Ativo         bool   `json:"ativo"`
}
