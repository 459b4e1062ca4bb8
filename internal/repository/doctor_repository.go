package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

const doctorSelect = `SELECT d.id, d.user_id, u.nome, d.crm, d.especialidade, COALESCE(d.descricao,''), d.ativo
FROM doctors d JOIN users u ON u.id = d.user_id`

// DoctorRepo persists doctor profiles in the 'doctors' table. Every query
// joins 'users' so that callers always see the display name alongside the
// profile.
type DoctorRepo struct{ DB *sql.DB }

func NewDoctorRepo(db *sql.DB) *DoctorRepo { return &DoctorRepo{DB: db} }

// DoctorUpdate carries the optional fields of a partial doctor update.
type DoctorUpdate struct {
	CRM           *string
	Especialidade *string
	Descricao     *string
	Ativo         *bool
}

func (r *DoctorRepo) getOne(ctx context.Context, where string, arg interface{}) (*model.Doctor, error) {
	var d model.Doctor
	err := r.DB.QueryRowContext(ctx, doctorSelect+" WHERE "+where+" LIMIT 1", arg).
		Scan(&d.ID, &d.UserID, &d.Nome, &d.CRM, &d.Especialidade, &d.Descricao, &d.Ativo)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ExistsByCRM reports whether a doctor with the given CRM exists.
func (r *DoctorRepo) ExistsByCRM(ctx context.Context, crm string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM doctors WHERE crm=?", crm).Scan(&n)
	return n > 0, err
}

// Create inserts a doctor profile linked to an existing user. The CRM
// pre-check yields the friendly duplicate message; the UNIQUE KEY on
// doctors.crm remains the authoritative guard and a racing insert surfaces
// as the same BusinessError.
func (r *DoctorRepo) Create(ctx context.Context, d *model.Doctor) error {
	d.CRM = strings.TrimSpace(d.CRM)
	taken, err := r.ExistsByCRM(ctx, d.CRM)
	if err != nil {
		return err
	}
	if taken {
		return &BusinessError{Message: "CRM já existe: " + d.CRM}
	}

	var userExists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id=?", d.UserID).Scan(&userExists); err != nil {
		return err
	}
	if userExists == 0 {
		return &NotFoundError{Entity: "Usuário", Field: "ID", Value: d.UserID}
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO doctors (user_id, crm, especialidade, descricao, ativo) VALUES (?,?,?,?,1)",
		d.UserID, d.CRM, d.Especialidade, d.Descricao)
	if err != nil {
		if isDuplicateKey(err) {
			return &BusinessError{Message: "CRM já existe: " + d.CRM}
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
	*d = *fresh
	return nil
}

// GetByID fetches a doctor by id, returning NotFoundError when absent.
func (r *DoctorRepo) GetByID(ctx context.Context, id uint64) (*model.Doctor, error) {
	d, err := r.getOne(ctx, "d.id=?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Médico", Field: "ID", Value: id}
	}
	return d, err
}

// GetByCRM fetches a doctor by CRM, returning NotFoundError when absent.
func (r *DoctorRepo) GetByCRM(ctx context.Context, crm string) (*model.Doctor, error) {
	d, err := r.getOne(ctx, "d.crm=?", strings.TrimSpace(crm))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Médico", Field: "CRM", Value: crm}
	}
	return d, err
}

// GetByUserID fetches the doctor profile owned by the given user.
func (r *DoctorRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Doctor, error) {
	d, err := r.getOne(ctx, "d.user_id=?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Médico", Field: "User ID", Value: userID}
	}
	return d, err
}

func (r *DoctorRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Doctor, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Doctor
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.UserID, &d.Nome, &d.CRM, &d.Especialidade, &d.Descricao, &d.Ativo); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// List returns all doctors ordered by id.
func (r *DoctorRepo) List(ctx context.Context) ([]model.Doctor, error) {
	return r.list(ctx, doctorSelect+" ORDER BY d.id")
}

// ListActive returns only active doctors.
func (r *DoctorRepo) ListActive(ctx context.Context) ([]model.Doctor, error) {
	return r.list(ctx, doctorSelect+" WHERE d.ativo=1 ORDER BY d.id")
}

// ListByEspecialidade returns the doctors with the given specialty.
func (r *DoctorRepo) ListByEspecialidade(ctx context.Context, especialidade string) ([]model.Doctor, error) {
	return r.list(ctx, doctorSelect+" WHERE d.especialidade=? ORDER BY d.id", especialidade)
}

// ListByNome returns doctors whose display name contains the given fragment.
func (r *DoctorRepo) ListByNome(ctx context.Context, nome string) ([]model.Doctor, error) {
	return r.list(ctx, doctorSelect+" WHERE LOWER(u.nome) LIKE ? ORDER BY d.id",
		"%"+strings.ToLower(strings.TrimSpace(nome))+"%")
}

// Update applies a partial update. The CRM uniqueness check runs only when
// the CRM actually changes, so resubmitting the current CRM never fails.
func (r *DoctorRepo) Update(ctx context.Context, id uint64, upd DoctorUpdate) (*model.Doctor, error) {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.CRM != nil {
		crm := strings.TrimSpace(*upd.CRM)
		if crm != d.CRM {
			taken, err := r.ExistsByCRM(ctx, crm)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, &BusinessError{Message: "CRM já existe: " + crm}
			}
		}
		d.CRM = crm
	}
	if upd.Especialidade != nil {
		d.Especialidade = *upd.Especialidade
	}
	if upd.Descricao != nil {
		d.Descricao = *upd.Descricao
	}
	if upd.Ativo != nil {
		d.Ativo = *upd.Ativo
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE doctors SET crm=?, especialidade=?, descricao=?, ativo=? WHERE id=?",
		d.CRM, d.Especialidade, d.Descricao, d.Ativo, id)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, &BusinessError{Message: "CRM já existe: " + d.CRM}
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetAtivo flips the profile's active flag.
func (r *DoctorRepo) SetAtivo(ctx context.Context, id uint64, ativo bool) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "UPDATE doctors SET ativo=? WHERE id=?", ativo, id)
	return err
}

// Delete hard-deletes a doctor row.
func (r *DoctorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM doctors WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "Médico", Field: "ID", Value: id}
	}
	return nil
}
