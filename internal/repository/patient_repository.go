package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

const patientSelect = `SELECT p.id, p.user_id, u.nome, p.cpf, p.data_nascimento, COALESCE(p.endereco,''),
COALESCE(p.numero_cartao_sus,''), COALESCE(p.convenio_medico,''), COALESCE(p.contato_emergencia,''),
COALESCE(p.observacoes_medicas,''), p.ativo
FROM patients p JOIN users u ON u.id = p.user_id`

// PatientRepo persists patient profiles in the 'patients' table.
type PatientRepo struct{ DB *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{DB: db} }

// PatientUpdate carries the optional fields of a partial patient update.
type PatientUpdate struct {
	CPF                *string
	DataNascimento     *time.Time
	Endereco           *string
	NumeroCartaoSUS    *string
	ConvenioMedico     *string
	ContatoEmergencia  *string
	ObservacoesMedicas *string
	Ativo              *bool
}

func (r *PatientRepo) getOne(ctx context.Context, where string, arg interface{}) (*model.Patient, error) {
	var p model.Patient
	err := r.DB.QueryRowContext(ctx, patientSelect+" WHERE "+where+" LIMIT 1", arg).
		Scan(&p.ID, &p.UserID, &p.Nome, &p.CPF, &p.DataNascimento, &p.Endereco,
			&p.NumeroCartaoSUS, &p.ConvenioMedico, &p.ContatoEmergencia,
			&p.ObservacoesMedicas, &p.Ativo)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ExistsByCPF reports whether a patient with the given CPF exists.
func (r *PatientRepo) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM patients WHERE cpf=?", cpf).Scan(&n)
	return n > 0, err
}

// Create inserts a patient profile linked to an existing user. Same duplicate
// handling as DoctorRepo.Create, keyed on the CPF.
func (r *PatientRepo) Create(ctx context.Context, p *model.Patient) error {
	p.CPF = strings.TrimSpace(p.CPF)
	taken, err := r.ExistsByCPF(ctx, p.CPF)
	if err != nil {
		return err
	}
	if taken {
		return &BusinessError{Message: "CPF já existe: " + p.CPF}
	}

	var userExists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id=?", p.UserID).Scan(&userExists); err != nil {
		return err
	}
	if userExists == 0 {
		return &NotFoundError{Entity: "Usuário", Field: "ID", Value: p.UserID}
	}

	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO patients (user_id, cpf, data_nascimento, endereco, numero_cartao_sus,
		convenio_medico, contato_emergencia, observacoes_medicas, ativo) VALUES (?,?,?,?,?,?,?,?,1)`,
		p.UserID, p.CPF, p.DataNascimento, p.Endereco, p.NumeroCartaoSUS,
		p.ConvenioMedico, p.ContatoEmergencia, p.ObservacoesMedicas)
	if err != nil {
		if isDuplicateKey(err) {
			return &BusinessError{Message: "CPF já existe: " + p.CPF}
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
	*p = *fresh
	return nil
}

// GetByID fetches a patient by id, returning NotFoundError when absent.
func (r *PatientRepo) GetByID(ctx context.Context, id uint64) (*model.Patient, error) {
	p, err := r.getOne(ctx, "p.id=?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Paciente", Field: "ID", Value: id}
	}
	return p, err
}

// GetByCPF fetches a patient by CPF, returning NotFoundError when absent.
func (r *PatientRepo) GetByCPF(ctx context.Context, cpf string) (*model.Patient, error) {
	p, err := r.getOne(ctx, "p.cpf=?", strings.TrimSpace(cpf))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Paciente", Field: "CPF", Value: cpf}
	}
	return p, err
}

// GetByUserID fetches the patient profile owned by the given user.
func (r *PatientRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Patient, error) {
	p, err := r.getOne(ctx, "p.user_id=?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Paciente", Field: "User ID", Value: userID}
	}
	return p, err
}

func (r *PatientRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Patient, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Patient
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.Nome, &p.CPF, &p.DataNascimento, &p.Endereco,
			&p.NumeroCartaoSUS, &p.ConvenioMedico, &p.ContatoEmergencia,
			&p.ObservacoesMedicas, &p.Ativo); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// List returns all patients ordered by id.
func (r *PatientRepo) List(ctx context.Context) ([]model.Patient, error) {
	return r.list(ctx, patientSelect+" ORDER BY p.id")
}

// ListActive returns only active patients.
func (r *PatientRepo) ListActive(ctx context.Context) ([]model.Patient, error) {
	return r.list(ctx, patientSelect+" WHERE p.ativo=1 ORDER BY p.id")
}

// ListByNome returns patients whose display name contains the given fragment.
func (r *PatientRepo) ListByNome(ctx context.Context, nome string) ([]model.Patient, error) {
	return r.list(ctx, patientSelect+" WHERE LOWER(u.nome) LIKE ? ORDER BY p.id",
		"%"+strings.ToLower(strings.TrimSpace(nome))+"%")
}

// Update applies a partial update. The CPF uniqueness check runs only when
// the CPF actually changes.
func (r *PatientRepo) Update(ctx context.Context, id uint64, upd PatientUpdate) (*model.Patient, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.CPF != nil {
		cpf := strings.TrimSpace(*upd.CPF)
		if cpf != p.CPF {
			taken, err := r.ExistsByCPF(ctx, cpf)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, &BusinessError{Message: "CPF já existe: " + cpf}
			}
		}
		p.CPF = cpf
	}
	if upd.DataNascimento != nil {
		p.DataNascimento = *upd.DataNascimento
	}
	if upd.Endereco != nil {
		p.Endereco = *upd.Endereco
	}
	if upd.NumeroCartaoSUS != nil {
		p.NumeroCartaoSUS = *upd.NumeroCartaoSUS
	}
	if upd.ConvenioMedico != nil {
		p.ConvenioMedico = *upd.ConvenioMedico
	}
	if upd.ContatoEmergencia != nil {
		p.ContatoEmergencia = *upd.ContatoEmergencia
	}
	if upd.ObservacoesMedicas != nil {
		p.ObservacoesMedicas = *upd.ObservacoesMedicas
	}
	if upd.Ativo != nil {
		p.Ativo = *upd.Ativo
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE patients SET cpf=?, data_nascimento=?, endereco=?, numero_cartao_sus=?,
		convenio_medico=?, contato_emergencia=?, observacoes_medicas=?, ativo=? WHERE id=?`,
		p.CPF, p.DataNascimento, p.Endereco, p.NumeroCartaoSUS, p.ConvenioMedico,
		p.ContatoEmergencia, p.ObservacoesMedicas, p.Ativo, id)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, &BusinessError{Message: "CPF já existe: " + p.CPF}
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetAtivo flips the profile's active flag.
func (r *PatientRepo) SetAtivo(ctx context.Context, id uint64, ativo bool) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "UPDATE patients SET ativo=? WHERE id=?", ativo, id)
	return err
}

// Delete hard-deletes a patient row.
func (r *PatientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM patients WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "Paciente", Field: "ID", Value: id}
	}
	return nil
}
