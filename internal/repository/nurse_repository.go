package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

const nurseSelect = `SELECT n.id, n.user_id, u.nome, n.coren, COALESCE(n.setor,''), COALESCE(n.turno,''),
COALESCE(n.especializacao,''), COALESCE(n.descricao,''), n.ativo
FROM nurses n JOIN users u ON u.id = n.user_id`

// NurseRepo persists nurse profiles in the 'nurses' table.
type NurseRepo struct{ DB *sql.DB }

func NewNurseRepo(db *sql.DB) *NurseRepo { return &NurseRepo{DB: db} }

// NurseUpdate carries the optional fields of a partial nurse update.
type NurseUpdate struct {
	COREN          *string
	Setor          *string
	Turno          *string
	Especializacao *string
	Descricao      *string
	Ativo          *bool
}

func (r *NurseRepo) getOne(ctx context.Context, where string, arg interface{}) (*model.Nurse, error) {
	var n model.Nurse
	err := r.DB.QueryRowContext(ctx, nurseSelect+" WHERE "+where+" LIMIT 1", arg).
		Scan(&n.ID, &n.UserID, &n.Nome, &n.COREN, &n.Setor, &n.Turno,
			&n.Especializacao, &n.Descricao, &n.Ativo)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ExistsByCOREN reports whether a nurse with the given COREN exists.
func (r *NurseRepo) ExistsByCOREN(ctx context.Context, coren string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM nurses WHERE coren=?", coren).Scan(&n)
	return n > 0, err
}

// Create inserts a nurse profile linked to an existing user. Same duplicate
// handling as DoctorRepo.Create, keyed on the COREN.
func (r *NurseRepo) Create(ctx context.Context, n *model.Nurse) error {
	n.COREN = strings.TrimSpace(n.COREN)
	taken, err := r.ExistsByCOREN(ctx, n.COREN)
	if err != nil {
		return err
	}
	if taken {
		return &BusinessError{Message: "COREN já existe: " + n.COREN}
	}

	var userExists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id=?", n.UserID).Scan(&userExists); err != nil {
		return err
	}
	if userExists == 0 {
		return &NotFoundError{Entity: "Usuário", Field: "ID", Value: n.UserID}
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO nurses (user_id, coren, setor, turno, especializacao, descricao, ativo) VALUES (?,?,?,?,?,?,1)",
		n.UserID, n.COREN, n.Setor, n.Turno, n.Especializacao, n.Descricao)
	if err != nil {
		if isDuplicateKey(err) {
			return &BusinessError{Message: "COREN já existe: " + n.COREN}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*n = *fresh
	return nil
}

// GetByID fetches a nurse by id, returning NotFoundError when absent.
func (r *NurseRepo) GetByID(ctx context.Context, id uint64) (*model.Nurse, error) {
	n, err := r.getOne(ctx, "n.id=?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Enfermeiro", Field: "ID", Value: id}
	}
	return n, err
}

// GetByCOREN fetches a nurse by COREN, returning NotFoundError when absent.
func (r *NurseRepo) GetByCOREN(ctx context.Context, coren string) (*model.Nurse, error) {
	n, err := r.getOne(ctx, "n.coren=?", strings.TrimSpace(coren))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Enfermeiro", Field: "COREN", Value: coren}
	}
	return n, err
}

// GetByUserID fetches the nurse profile owned by the given user.
func (r *NurseRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Nurse, error) {
	n, err := r.getOne(ctx, "n.user_id=?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Enfermeiro", Field: "User ID", Value: userID}
	}
	return n, err
}

func (r *NurseRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Nurse, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Nurse
	for rows.Next() {
		var n model.Nurse
		if err := rows.Scan(&n.ID, &n.UserID, &n.Nome, &n.COREN, &n.Setor, &n.Turno,
			&n.Especializacao, &n.Descricao, &n.Ativo); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// List returns all nurses ordered by id.
func (r *NurseRepo) List(ctx context.Context) ([]model.Nurse, error) {
	return r.list(ctx, nurseSelect+" ORDER BY n.id")
}

// ListActive returns only active nurses.
func (r *NurseRepo) ListActive(ctx context.Context) ([]model.Nurse, error) {
	return r.list(ctx, nurseSelect+" WHERE n.ativo=1 ORDER BY n.id")
}

// ListBySetor returns the nurses assigned to a sector.
func (r *NurseRepo) ListBySetor(ctx context.Context, setor string) ([]model.Nurse, error) {
	return r.list(ctx, nurseSelect+" WHERE n.setor=? ORDER BY n.id", setor)
}

// ListByTurno returns the nurses working a shift.
func (r *NurseRepo) ListByTurno(ctx context.Context, turno string) ([]model.Nurse, error) {
	return r.list(ctx, nurseSelect+" WHERE n.turno=? ORDER BY n.id", turno)
}

// ListBySetorAndTurno returns the nurses matching both sector and shift.
func (r *NurseRepo) ListBySetorAndTurno(ctx context.Context, setor, turno string) ([]model.Nurse, error) {
	return r.list(ctx, nurseSelect+" WHERE n.setor=? AND n.turno=? ORDER BY n.id", setor, turno)
}

// ListByEspecializacao returns the nurses with the given specialization.
func (r *NurseRepo) ListByEspecializacao(ctx context.Context, especializacao string) ([]model.Nurse, error) {
	return r.list(ctx, nurseSelect+" WHERE n.especializacao=? ORDER BY n.id", especializacao)
}

// ListByNome returns nurses whose display name contains the given fragment.
func (r *NurseRepo) ListByNome(ctx context.Context, nome string) ([]model.Nurse, error) {
	return r.list(ctx, nurseSelect+" WHERE LOWER(u.nome) LIKE ? ORDER BY n.id",
		"%"+strings.ToLower(strings.TrimSpace(nome))+"%")
}

// Update applies a partial update. The COREN uniqueness check runs only when
// the COREN actually changes.
func (r *NurseRepo) Update(ctx context.Context, id uint64, upd NurseUpdate) (*model.Nurse, error) {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.COREN != nil {
		coren := strings.TrimSpace(*upd.COREN)
		if coren != n.COREN {
			taken, err := r.ExistsByCOREN(ctx, coren)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, &BusinessError{Message: "COREN já existe: " + coren}
			}
		}
		n.COREN = coren
	}
	if upd.Setor != nil {
		n.Setor = *upd.Setor
	}
	if upd.Turno != nil {
		n.Turno = *upd.Turno
	}
	if upd.Especializacao != nil {
		n.Especializacao = *upd.Especializacao
	}
	if upd.Descricao != nil {
		n.Descricao = *upd.Descricao
	}
	if upd.Ativo != nil {
		n.Ativo = *upd.Ativo
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE nurses SET coren=?, setor=?, turno=?, especializacao=?, descricao=?, ativo=? WHERE id=?",
		n.COREN, n.Setor, n.Turno, n.Especializacao, n.Descricao, n.Ativo, id)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, &BusinessError{Message: "COREN já existe: " + n.COREN}
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetAtivo flips the profile's active flag.
func (r *NurseRepo) SetAtivo(ctx context.Context, id uint64, ativo bool) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "UPDATE nurses SET ativo=? WHERE id=?", ativo, id)
	return err
}

// Delete hard-deletes a nurse row.
func (r *NurseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM nurses WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "Enfermeiro", Field: "ID", Value: id}
	}
	return nil
}
