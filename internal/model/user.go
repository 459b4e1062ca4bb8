package model

import (
	"strings"
	"time"
)

// Role values stored in users.role and carried in the JWT "role" claim.
const (
	RolePaciente   = "PACIENTE"
	RoleEnfermeiro = "ENFERMEIRO"
	RoleMedico     = "MEDICO"
)

// ParseRole normalizes a role string and reports whether it is a known role.
func ParseRole(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case RolePaciente:
		return RolePaciente, true
	case RoleEnfermeiro:
		return RoleEnfermeiro, true
	case RoleMedico:
		return RoleMedico, true
	}
	return "", false
}

// User represents a row in the `users` table. Every doctor, nurse and
// patient profile is linked one-to-one to a user account. PasswordHash is
// never serialized.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Nome         – display name.
//  Telefone     – contact phone (optional).
//  Role         – PACIENTE, ENFERMEIRO or MEDICO.
//  Active       – whether the account is enabled.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nome         string    `json:"nome"`
	Telefone     string    `json:"telefone,omitempty"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
