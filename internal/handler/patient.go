package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
	"github.com/rmoreira/clinic-scheduler/internal/repository"
)

const dateLayout = "2006-01-02"

// PatientHandler exposes the patient profile registry. Patients themselves
// may read and update their own record; everything else is staff-only and
// enforced by the router.
type PatientHandler struct {
	Patients *repository.PatientRepo
}

func NewPatientHandler(p *repository.PatientRepo) *PatientHandler {
	return &PatientHandler{Patients: p}
}

type patientCreateReq struct {
	UserID             uint64 `json:"userId"`
	CPF                string `json:"cpf"`
	DataNascimento     string `json:"dataNascimento"` // YYYY-MM-DD
	Endereco           string `json:"endereco"`
	NumeroCartaoSUS    string `json:"numeroCartaoSus"`
	ConvenioMedico     string `json:"convenioMedico"`
	ContatoEmergencia  string `json:"contatoEmergencia"`
	ObservacoesMedicas string `json:"observacoesMedicas"`
}

type patientUpdateReq struct {
	CPF                *string `json:"cpf"`
	DataNascimento     *string `json:"dataNascimento"` // YYYY-MM-DD
	Endereco           *string `json:"endereco"`
	NumeroCartaoSUS    *string `json:"numeroCartaoSus"`
	ConvenioMedico     *string `json:"convenioMedico"`
	ContatoEmergencia  *string `json:"contatoEmergencia"`
	ObservacoesMedicas *string `json:"observacoesMedicas"`
	Ativo              *bool   `json:"ativo"`
}

// ownPatient checks that a patient-role caller owns the profile with the
// given id. Staff callers always pass.
func (h *PatientHandler) ownPatient(c echo.Context, id uint64) (bool, error) {
	if !isPatientPrincipal(c) {
		return true, nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Patients.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.UserID == principalID(c), nil
}

// Create registers a patient profile for an existing user. The CPF must be
// unique; new profiles always start active.
func (h *PatientHandler) Create(c echo.Context) error {
	var req patientCreateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}

	var fields []FieldError
	req.CPF = strings.TrimSpace(req.CPF)
	if req.UserID == 0 {
		fields = append(fields, FieldError{Field: "userId", Message: "não pode estar vazio"})
	}
	if req.CPF == "" {
		fields = append(fields, FieldError{Field: "cpf", Message: "não pode estar vazio"})
	}
	nascimento, err := time.Parse(dateLayout, req.DataNascimento)
	if err != nil {
		fields = append(fields, FieldError{Field: "dataNascimento", Message: "deve estar no formato YYYY-MM-DD"})
	}
	if len(fields) > 0 {
		return validationFailed(c, "Dados do paciente inválidos", fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := &model.Patient{
		UserID:             req.UserID,
		CPF:                req.CPF,
		DataNascimento:     nascimento,
		Endereco:           req.Endereco,
		NumeroCartaoSUS:    req.NumeroCartaoSUS,
		ConvenioMedico:     req.ConvenioMedico,
		ContatoEmergencia:  req.ContatoEmergencia,
		ObservacoesMedicas: req.ObservacoesMedicas,
	}
	if err := h.Patients.Create(ctx, p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// GetByID returns one patient profile. Patients may only read their own.
func (h *PatientHandler) GetByID(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}
	own, err := h.ownPatient(c, id)
	if err != nil {
		return respondError(c, err)
	}
	if !own {
		return accessDenied(c)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Patients.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GetByCPF returns the patient holding the given CPF.
func (h *PatientHandler) GetByCPF(c echo.Context) error {
	cpf := strings.TrimSpace(c.Param("cpf"))
	if cpf == "" {
		return validationFailed(c, "CPF inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Patients.GetByCPF(ctx, cpf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GetByUserID returns the patient profile owned by the given user account.
// Patients may only resolve their own.
func (h *PatientHandler) GetByUserID(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return validationFailed(c, "ID de usuário inválido")
	}
	if isPatientPrincipal(c) && userID != principalID(c) {
		return accessDenied(c)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Patients.GetByUserID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List returns all patient profiles.
func (h *PatientHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	patients, err := h.Patients.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, patients)
}

// ListActive returns only active patients.
func (h *PatientHandler) ListActive(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	patients, err := h.Patients.ListActive(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, patients)
}

// Search returns patients whose name contains the ?nome= fragment.
func (h *PatientHandler) Search(c echo.Context) error {
	nome := strings.TrimSpace(c.QueryParam("nome"))
	if nome == "" {
		return validationFailed(c, "Informe o parâmetro nome")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	patients, err := h.Patients.ListByNome(ctx, nome)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, patients)
}

// Update applies a partial profile update. Patients may only update their own
// record and may not touch cpf or ativo; changing the CPF re-runs the
// uniqueness check.
func (h *PatientHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	var req patientUpdateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}

	if isPatientPrincipal(c) && (req.CPF != nil || req.Ativo != nil) {
		return accessDenied(c)
	}
	own, err := h.ownPatient(c, id)
	if err != nil {
		return respondError(c, err)
	}
	if !own {
		return accessDenied(c)
	}

	var nascimento *time.Time
	if req.DataNascimento != nil {
		t, err := time.Parse(dateLayout, *req.DataNascimento)
		if err != nil {
			return validationFailed(c, "Data de nascimento inválida",
				FieldError{Field: "dataNascimento", Message: "deve estar no formato YYYY-MM-DD"})
		}
		nascimento = &t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Patients.Update(ctx, id, repository.PatientUpdate{
		CPF:                req.CPF,
		DataNascimento:     nascimento,
		Endereco:           req.Endereco,
		NumeroCartaoSUS:    req.NumeroCartaoSUS,
		ConvenioMedico:     req.ConvenioMedico,
		ContatoEmergencia:  req.ContatoEmergencia,
		ObservacoesMedicas: req.ObservacoesMedicas,
		Ativo:              req.Ativo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Activate enables a patient profile.
func (h *PatientHandler) Activate(c echo.Context) error {
	return h.setAtivo(c, true)
}

// Deactivate disables a patient profile.
func (h *PatientHandler) Deactivate(c echo.Context) error {
	return h.setAtivo(c, false)
}

func (h *PatientHandler) setAtivo(c echo.Context, ativo bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Patients.SetAtivo(ctx, id, ativo); err != nil {
		return respondError(c, err)
	}
	p, err := h.Patients.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete hard-deletes a patient profile.
func (h *PatientHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Patients.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
