package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
	"github.com/rmoreira/clinic-scheduler/internal/repository"
)

// DoctorHandler exposes the doctor profile registry.
type DoctorHandler struct {
	Doctors *repository.DoctorRepo
}

func NewDoctorHandler(d *repository.DoctorRepo) *DoctorHandler {
	return &DoctorHandler{Doctors: d}
}

type doctorCreateReq struct {
	UserID        uint64 `json:"userId"`
	CRM           string `json:"crm"`
	Especialidade string `json:"especialidade"`
	Descricao     string `json:"descricao"`
}

type doctorUpdateReq struct {
	CRM           *string `json:"crm"`
	Especialidade *string `json:"especialidade"`
	Descricao     *string `json:"descricao"`
	Ativo         *bool   `json:"ativo"`
}

// Create registers a doctor profile for an existing user. The CRM must be
// unique; new profiles always start active.
func (h *DoctorHandler) Create(c echo.Context) error {
	var req doctorCreateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}

	var fields []FieldError
	req.CRM = strings.TrimSpace(req.CRM)
	if req.UserID == 0 {
		fields = append(fields, FieldError{Field: "userId", Message: "não pode estar vazio"})
	}
	if req.CRM == "" {
		fields = append(fields, FieldError{Field: "crm", Message: "não pode estar vazio"})
	}
	esp, ok := model.ParseEspecialidade(req.Especialidade)
	if !ok {
		fields = append(fields, FieldError{Field: "especialidade", Message: "especialidade desconhecida"})
	}
	if len(fields) > 0 {
		return validationFailed(c, "Dados do médico inválidos", fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d := &model.Doctor{
		UserID:        req.UserID,
		CRM:           req.CRM,
		Especialidade: esp,
		Descricao:     req.Descricao,
	}
	if err := h.Doctors.Create(ctx, d); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// GetByID returns one doctor profile.
func (h *DoctorHandler) GetByID(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Doctors.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// GetByCRM returns the doctor holding the given CRM.
func (h *DoctorHandler) GetByCRM(c echo.Context) error {
	crm := strings.TrimSpace(c.Param("crm"))
	if crm == "" {
		return validationFailed(c, "CRM inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Doctors.GetByCRM(ctx, crm)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// GetByUserID returns the doctor profile owned by the given user account.
func (h *DoctorHandler) GetByUserID(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return validationFailed(c, "ID de usuário inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Doctors.GetByUserID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// List returns all doctor profiles.
func (h *DoctorHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	doctors, err := h.Doctors.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doctors)
}

// ListActive returns only active doctors.
func (h *DoctorHandler) ListActive(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	doctors, err := h.Doctors.ListActive(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doctors)
}

// ListByEspecialidade returns the doctors practicing the given specialty.
func (h *DoctorHandler) ListByEspecialidade(c echo.Context) error {
	esp, ok := model.ParseEspecialidade(c.Param("especialidade"))
	if !ok {
		return validationFailed(c, "Especialidade desconhecida: "+c.Param("especialidade"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	doctors, err := h.Doctors.ListByEspecialidade(ctx, esp)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doctors)
}

// Search returns doctors whose name contains the ?nome= fragment.
func (h *DoctorHandler) Search(c echo.Context) error {
	nome := strings.TrimSpace(c.QueryParam("nome"))
	if nome == "" {
		return validationFailed(c, "Informe o parâmetro nome")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	doctors, err := h.Doctors.ListByNome(ctx, nome)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doctors)
}

// Update applies a partial profile update. Changing the CRM re-runs the
// uniqueness check; resubmitting the current CRM never fails.
func (h *DoctorHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	var req doctorUpdateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}
	if req.Especialidade != nil {
		esp, ok := model.ParseEspecialidade(*req.Especialidade)
		if !ok {
			return validationFailed(c, "Especialidade desconhecida: "+*req.Especialidade)
		}
		req.Especialidade = &esp
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Doctors.Update(ctx, id, repository.DoctorUpdate{
		CRM:           req.CRM,
		Especialidade: req.Especialidade,
		Descricao:     req.Descricao,
		Ativo:         req.Ativo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Activate enables a doctor profile.
func (h *DoctorHandler) Activate(c echo.Context) error {
	return h.setAtivo(c, true)
}

// Deactivate disables a doctor profile.
func (h *DoctorHandler) Deactivate(c echo.Context) error {
	return h.setAtivo(c, false)
}

func (h *DoctorHandler) setAtivo(c echo.Context, ativo bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Doctors.SetAtivo(ctx, id, ativo); err != nil {
		return respondError(c, err)
	}
	d, err := h.Doctors.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Delete hard-deletes a doctor profile.
func (h *DoctorHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Doctors.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
