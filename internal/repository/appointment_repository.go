package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

const appointmentSelect = `SELECT a.id, a.data_hora, a.status,
COALESCE(a.motivo,''), COALESCE(a.observacoes,''), COALESCE(a.diagnostico,''), COALESCE(a.prescricao,''),
a.data_criacao, a.data_alteracao,
d.id, du.nome, d.crm, d.especialidade,
p.id, pu.id, pu.nome, p.cpf,
n.id, nu.nome, n.coren, COALESCE(n.setor,'')
FROM appointments a
JOIN doctors d ON d.id = a.doctor_id
JOIN users du ON du.id = d.user_id
JOIN patients p ON p.id = a.patient_id
JOIN users pu ON pu.id = p.user_id
LEFT JOIN nurses n ON n.id = a.nurse_id
LEFT JOIN users nu ON nu.id = n.user_id`

// AppointmentRepo persists appointments and serves the reporting queries.
// Rows are always returned hydrated: the doctor, patient and optional nurse
// summaries come along via joins instead of bare foreign keys.
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

// AppointmentUpdate carries the optional fields of a partial appointment
// update. A nil field leaves the stored column untouched; a non-nil pointer
// to an empty string explicitly clears a nullable text column.
type AppointmentUpdate struct {
	DataHora    *time.Time
	Status      *string
	Motivo      *string
	Observacoes *string
	Diagnostico *string
	Prescricao  *string
}

func scanAppointment(scan func(dest ...interface{}) error) (*model.Appointment, error) {
	var (
		a        model.Appointment
		altered  sql.NullTime
		nurseID  sql.NullInt64
		nurseNm  sql.NullString
		nurseCOR sql.NullString
		nurseSet sql.NullString
	)
	err := scan(&a.ID, &a.DataHora, &a.Status,
		&a.Motivo, &a.Observacoes, &a.Diagnostico, &a.Prescricao,
		&a.DataCriacao, &altered,
		&a.Medico.ID, &a.Medico.Nome, &a.Medico.CRM, &a.Medico.Especialidade,
		&a.Paciente.ID, &a.Paciente.UserID, &a.Paciente.Nome, &a.Paciente.CPF,
		&nurseID, &nurseNm, &nurseCOR, &nurseSet)
	if err != nil {
		return nil, err
	}
	if altered.Valid {
		t := altered.Time
		a.DataAlteracao = &t
	}
	if nurseID.Valid {
		a.Enfermeiro = &model.NurseRef{
			ID:    uint64(nurseID.Int64),
			Nome:  nurseNm.String,
			COREN: nurseCOR.String,
			Setor: nurseSet.String,
		}
	}
	return &a, nil
}

// Create inserts a new appointment with status AGENDADA and the creation
// timestamp set to now. Referential checks on doctor, patient and nurse are
// performed by the caller before this point; the foreign keys still back
// them at the storage layer.
func (r *AppointmentRepo) Create(ctx context.Context, doctorID, patientID uint64, nurseID *uint64,
	dataHora time.Time, motivo, observacoes string) (*model.Appointment, error) {
	var nid interface{}
	if nurseID != nil {
		nid = *nurseID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO appointments (doctor_id, patient_id, nurse_id, data_hora, status, motivo, observacoes, data_criacao)
		VALUES (?,?,?,?,?,?,?,NOW())`,
		doctorID, patientID, nid, dataHora, model.StatusAgendada, motivo, observacoes)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches an appointment by id, returning NotFoundError when absent.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (*model.Appointment, error) {
	row := r.DB.QueryRowContext(ctx, appointmentSelect+" WHERE a.id=? LIMIT 1", id)
	a, err := scanAppointment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Consulta", Field: "ID", Value: id}
	}
	return a, err
}

func (r *AppointmentRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Appointment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

// List returns all appointments ordered by scheduled time.
func (r *AppointmentRepo) List(ctx context.Context) ([]model.Appointment, error) {
	return r.list(ctx, appointmentSelect+" ORDER BY a.data_hora")
}

// ListByDoctor returns all appointments assigned to a doctor.
func (r *AppointmentRepo) ListByDoctor(ctx context.Context, doctorID uint64) ([]model.Appointment, error) {
	return r.list(ctx, appointmentSelect+" WHERE a.doctor_id=? ORDER BY a.data_hora", doctorID)
}

// ListByPatient returns all appointments of a patient.
func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID uint64) ([]model.Appointment, error) {
	return r.list(ctx, appointmentSelect+" WHERE a.patient_id=? ORDER BY a.data_hora", patientID)
}

// ListByStatus returns all appointments currently in the given status.
func (r *AppointmentRepo) ListByStatus(ctx context.Context, status string) ([]model.Appointment, error) {
	return r.list(ctx, appointmentSelect+" WHERE a.status=? ORDER BY a.data_hora", status)
}

// ListByPeriod returns the appointments scheduled between inicio and fim
// (inclusive).
func (r *AppointmentRepo) ListByPeriod(ctx context.Context, inicio, fim time.Time) ([]model.Appointment, error) {
	return r.list(ctx, appointmentSelect+" WHERE a.data_hora BETWEEN ? AND ? ORDER BY a.data_hora", inicio, fim)
}

// ListUpcomingByPatient returns the patient's appointments strictly after
// now, soonest first.
func (r *AppointmentRepo) ListUpcomingByPatient(ctx context.Context, patientID uint64, now time.Time) ([]model.Appointment, error) {
	return r.list(ctx,
		appointmentSelect+" WHERE a.patient_id=? AND a.data_hora > ? ORDER BY a.data_hora ASC",
		patientID, now)
}

// ListHistoryByPatient returns every appointment of the patient, most recent
// scheduled time first.
func (r *AppointmentRepo) ListHistoryByPatient(ctx context.Context, patientID uint64) ([]model.Appointment, error) {
	return r.list(ctx,
		appointmentSelect+" WHERE a.patient_id=? ORDER BY a.data_hora DESC", patientID)
}

// ListPendingNotification returns future appointments still awaiting the
// encounter (AGENDADA or CONFIRMADA). These are reminder candidates; no
// notification is dispatched here.
func (r *AppointmentRepo) ListPendingNotification(ctx context.Context, now time.Time) ([]model.Appointment, error) {
	return r.list(ctx,
		appointmentSelect+" WHERE a.data_hora > ? AND a.status IN (?,?) ORDER BY a.data_hora",
		now, model.StatusAgendada, model.StatusConfirmada)
}

// Update applies a partial update and stamps data_alteracao. COALESCE keeps
// any column whose parameter is NULL, which is exactly the nil-pointer
// sentinel of AppointmentUpdate. Date validation happens in the handler
// before any write.
func (r *AppointmentRepo) Update(ctx context.Context, id uint64, upd AppointmentUpdate) (*model.Appointment, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE appointments SET
		data_hora   = COALESCE(?, data_hora),
		status      = COALESCE(?, status),
		motivo      = COALESCE(?, motivo),
		observacoes = COALESCE(?, observacoes),
		diagnostico = COALESCE(?, diagnostico),
		prescricao  = COALESCE(?, prescricao),
		data_alteracao = NOW()
		WHERE id=?`,
		upd.DataHora, upd.Status, upd.Motivo, upd.Observacoes, upd.Diagnostico, upd.Prescricao, id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus overwrites the status unconditionally and stamps
// data_alteracao. The caller validates that the status string is a known
// value; no transition table is enforced.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uint64, status string) (*model.Appointment, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET status=?, data_alteracao=NOW() WHERE id=?", status, id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Cancel sets status CANCELADA and appends a cancellation note to the
// observations instead of replacing them.
func (r *AppointmentRepo) Cancel(ctx context.Context, id uint64, motivo string) (*model.Appointment, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE appointments SET status=?,
		observacoes = CONCAT(COALESCE(observacoes,''), ?),
		data_alteracao = NOW()
		WHERE id=?`,
		model.StatusCancelada, CancellationNote(motivo), id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// CancellationNote formats the note appended to observacoes when an
// appointment is cancelled.
func CancellationNote(motivo string) string {
	return "\nCANCELAMENTO: " + motivo
}

// Delete hard-deletes an appointment row.
func (r *AppointmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM appointments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "Consulta", Field: "ID", Value: id}
	}
	return nil
}
