package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
	"github.com/rmoreira/clinic-scheduler/internal/repository"
)

// NurseHandler exposes the nurse profile registry.
type NurseHandler struct {
	Nurses *repository.NurseRepo
}

func NewNurseHandler(n *repository.NurseRepo) *NurseHandler {
	return &NurseHandler{Nurses: n}
}

type nurseCreateReq struct {
	UserID         uint64 `json:"userId"`
	COREN          string `json:"coren"`
	Setor          string `json:"setor"`
	Turno          string `json:"turno"`
	Especializacao string `json:"especializacao"`
	Descricao      string `json:"descricao"`
}

type nurseUpdateReq struct {
	COREN          *string `json:"coren"`
	Setor          *string `json:"setor"`
	Turno          *string `json:"turno"`
	Especializacao *string `json:"especializacao"`
	Descricao      *string `json:"descricao"`
	Ativo          *bool   `json:"ativo"`
}

// Create registers a nurse profile for an existing user. The COREN must be
// unique; new profiles always start active.
func (h *NurseHandler) Create(c echo.Context) error {
	var req nurseCreateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}

	var fields []FieldError
	req.COREN = strings.TrimSpace(req.COREN)
	if req.UserID == 0 {
		fields = append(fields, FieldError{Field: "userId", Message: "não pode estar vazio"})
	}
	if req.COREN == "" {
		fields = append(fields, FieldError{Field: "coren", Message: "não pode estar vazio"})
	}
	if len(fields) > 0 {
		return validationFailed(c, "Dados do enfermeiro inválidos", fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n := &model.Nurse{
		UserID:         req.UserID,
		COREN:          req.COREN,
		Setor:          req.Setor,
		Turno:          req.Turno,
		Especializacao: req.Especializacao,
		Descricao:      req.Descricao,
	}
	if err := h.Nurses.Create(ctx, n); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

// GetByID returns one nurse profile.
func (h *NurseHandler) GetByID(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Nurses.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// GetByCOREN returns the nurse holding the given COREN.
func (h *NurseHandler) GetByCOREN(c echo.Context) error {
	coren := strings.TrimSpace(c.Param("coren"))
	if coren == "" {
		return validationFailed(c, "COREN inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Nurses.GetByCOREN(ctx, coren)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// GetByUserID returns the nurse profile owned by the given user account.
func (h *NurseHandler) GetByUserID(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return validationFailed(c, "ID de usuário inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Nurses.GetByUserID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// List returns all nurse profiles.
func (h *NurseHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	nurses, err := h.Nurses.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nurses)
}

// ListActive returns only active nurses.
func (h *NurseHandler) ListActive(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	nurses, err := h.Nurses.ListActive(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nurses)
}

// ListBySetor returns the nurses assigned to a sector.
func (h *NurseHandler) ListBySetor(c echo.Context) error {
	setor := strings.TrimSpace(c.Param("setor"))
	if setor == "" {
		return validationFailed(c, "Setor inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	nurses, err := h.Nurses.ListBySetor(ctx, setor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nurses)
}

// ListByTurno returns the nurses working a shift.
func (h *NurseHandler) ListByTurno(c echo.Context) error {
	turno := strings.TrimSpace(c.Param("turno"))
	if turno == "" {
		return validationFailed(c, "Turno inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	nurses, err := h.Nurses.ListByTurno(ctx, turno)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nurses)
}

// ListBySetorAndTurno returns the nurses on a sector during a shift.
func (h *NurseHandler) ListBySetorAndTurno(c echo.Context) error {
	setor := strings.TrimSpace(c.Param("setor"))
	turno := strings.TrimSpace(c.Param("turno"))
	if setor == "" || turno == "" {
		return validationFailed(c, "Setor e turno são obrigatórios")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	nurses, err := h.Nurses.ListBySetorAndTurno(ctx, setor, turno)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nurses)
}

// ListByEspecializacao returns the nurses holding a specialization.
func (h *NurseHandler) ListByEspecializacao(c echo.Context) error {
	especializacao := strings.TrimSpace(c.Param("especializacao"))
	if especializacao == "" {
		return validationFailed(c, "Especialização inválida")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	nurses, err := h.Nurses.ListByEspecializacao(ctx, especializacao)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nurses)
}

// Search returns nurses whose name contains the ?nome= fragment.
func (h *NurseHandler) Search(c echo.Context) error {
	nome := strings.TrimSpace(c.QueryParam("nome"))
	if nome == "" {
		return validationFailed(c, "Informe o parâmetro nome")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	nurses, err := h.Nurses.ListByNome(ctx, nome)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nurses)
}

// Update applies a partial profile update. Changing the COREN re-runs the
// uniqueness check; resubmitting the current COREN never fails.
func (h *NurseHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	var req nurseUpdateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Nurses.Update(ctx, id, repository.NurseUpdate{
		COREN:          req.COREN,
		Setor:          req.Setor,
		Turno:          req.Turno,
		Especializacao: req.Especializacao,
		Descricao:      req.Descricao,
		Ativo:          req.Ativo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// Activate enables a nurse profile.
func (h *NurseHandler) Activate(c echo.Context) error {
	return h.setAtivo(c, true)
}

// Deactivate disables a nurse profile.
func (h *NurseHandler) Deactivate(c echo.Context) error {
	return h.setAtivo(c, false)
}

func (h *NurseHandler) setAtivo(c echo.Context, ativo bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Nurses.SetAtivo(ctx, id, ativo); err != nil {
		return respondError(c, err)
	}
	n, err := h.Nurses.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// Delete hard-deletes a nurse profile.
func (h *NurseHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Nurses.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
