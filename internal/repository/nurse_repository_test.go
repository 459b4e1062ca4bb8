package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

func TestNurseRepoFilters(t *testing.T) {
	db := testDB(t)
	users := NewUserRepo(db)
	repo := NewNurseRepo(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	suffix := time.Now().UnixNano()
	u := &model.User{
		Username: fmt.Sprintf("enf_%d", suffix),
		Email:    fmt.Sprintf("enf_%d@clinica.test", suffix),
		Nome:     "Enfermeira de Teste",
		Role:     model.RoleEnfermeiro,
	}
	if err := users.Create(ctx, u, "senha-de-teste", 4); err != nil {
		t.Fatalf("create user: %v", err)
	}
	defer func() { _ = users.Delete(ctx, u.ID) }()

	n := &model.Nurse{
		UserID:         u.ID,
		COREN:          fmt.Sprintf("COREN-%d", suffix),
		Setor:          "UTI",
		Turno:          "NOTURNO",
		Especializacao: fmt.Sprintf("obstetricia_%d", suffix),
	}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("create nurse: %v", err)
	}
	defer func() { _ = repo.Delete(ctx, n.ID) }()

	byEsp, err := repo.ListByEspecializacao(ctx, n.Especializacao)
	if err != nil {
		t.Fatalf("ListByEspecializacao: %v", err)
	}
	if len(byEsp) != 1 || byEsp[0].ID != n.ID {
		t.Fatalf("ListByEspecializacao returned %d rows, want the created nurse", len(byEsp))
	}

	none, err := repo.ListByEspecializacao(ctx, fmt.Sprintf("inexistente_%d", suffix))
	if err != nil {
		t.Fatalf("ListByEspecializacao (miss): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("unknown specialization matched %d rows", len(none))
	}

	both, err := repo.ListBySetorAndTurno(ctx, "UTI", "NOTURNO")
	if err != nil {
		t.Fatalf("ListBySetorAndTurno: %v", err)
	}
	found := false
	for _, got := range both {
		if got.ID == n.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("created nurse missing from setor+turno filter")
	}
}
