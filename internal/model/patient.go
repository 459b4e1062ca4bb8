package model

import "time"

// Patient represents a row in the `patients` table. Each patient extends one
// user account with a unique CPF and clinical contact data.
//
// DataNascimento is stored as a DATE column; only the day component is
// meaningful.
type Patient struct {
	ID                 uint64    `json:"id"`
	UserID             uint64    `json:"userId"`
	Nome               string    `json:"nome"` // joined from users.nome
	CPF                string    `json:"cpf"`
	DataNascimento     time.Time `json:"dataNascimento"`
	Endereco           string    `json:"endereco,omitempty"`
	NumeroCartaoSUS    string    `json:"numeroCartaoSus,omitempty"`
	ConvenioMedico     string    `json:"convenioMedico,omitempty"`
	ContatoEmergencia  string    `json:"contatoEmergencia,omitempty"`
	ObservacoesMedicas string    `json:"observacoesMedicas,omitempty"`
	Ativo              bool      `json:"ativo"`
}
