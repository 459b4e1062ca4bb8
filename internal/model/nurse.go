package model

// Nurse represents a row in the `nurses` table. Each nurse extends one user
// account with a unique COREN license number plus sector and shift data used
// by the staffing queries.
type Nurse struct {
	ID             uint64 `json:"id"`
	UserID         uint64 `json:"userId"`
	Nome           string `json:"nome"` // joined from users.nome
	COREN          string `json:"coren"`
	Setor          string `json:"setor,omitempty"`
	Turno          string `json:"turno,omitempty"`
	Especializacao string `json:"especializacao,omitempty"`
	Descricao      string `json:"descricao,omitempty"`
	Ativo          bool   `json:"ativo"`
}
