package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

// testDB opens the database named by TEST_DB_DSN. Tests are skipped when the
// variable is unset so the suite runs without infrastructure.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping database test")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepoLifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepo(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	suffix := time.Now().UnixNano()
	u := &model.User{
		Username: fmt.Sprintf("teste_%d", suffix),
		Email:    fmt.Sprintf("teste_%d@clinica.test", suffix),
		Nome:     "Conta de Teste",
		Role:     model.RolePaciente,
	}
	if err := repo.Create(ctx, u, "senha-de-teste", 4); err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer func() { _ = repo.Delete(ctx, u.ID) }()

	if u.ID == 0 || !u.Active {
		t.Fatalf("created user not hydrated: %+v", u)
	}

	dup := &model.User{Username: u.Username, Email: "outro@clinica.test", Nome: "Dup", Role: model.RolePaciente}
	var be *BusinessError
	if err := repo.Create(ctx, dup, "senha", 4); !errors.As(err, &be) {
		t.Fatalf("duplicate username: got %v, want BusinessError", err)
	}

	tel := "11 99999-0000"
	updated, err := repo.Update(ctx, u.ID, UserUpdate{Telefone: &tel})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Telefone != tel {
		t.Fatalf("telefone = %q, want %q", updated.Telefone, tel)
	}

	if err := repo.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Active {
		t.Fatal("user still active after deactivation")
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var nf *NotFoundError
	if _, err := repo.GetByID(ctx, u.ID); !errors.As(err, &nf) {
		t.Fatalf("after delete: got %v, want NotFoundError", err)
	}
}
