package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
	"github.com/rmoreira/clinic-scheduler/internal/repository"
)

// UserHandler exposes the user account registry.
type UserHandler struct {
	Users      *repository.UserRepo
	Tokens     *repository.TokenRepo
	BcryptCost int
}

func NewUserHandler(u *repository.UserRepo, t *repository.TokenRepo, bcryptCost int) *UserHandler {
	return &UserHandler{Users: u, Tokens: t, BcryptCost: bcryptCost}
}

type userUpdateReq struct {
	Nome     *string `json:"nome"`
	Email    *string `json:"email"`
	Telefone *string `json:"telefone"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

// Create provisions an account with an explicit role. This is how clinical
// staff are minted: public registration only ever yields PACIENTE. The
// username check runs before the email check, same as registration.
func (h *UserHandler) Create(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}
	fields := validateRegister(&req)
	role, ok := model.ParseRole(req.Role)
	if !ok {
		fields = append(fields, FieldError{Field: "role", Message: "role desconhecida"})
	}
	if len(fields) > 0 {
		return validationFailed(c, "Dados de cadastro inválidos", fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Nome:     req.Nome,
		Telefone: req.Telefone,
		Role:     role,
	}
	if err := h.Users.Create(ctx, u, req.Password, h.BcryptCost); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// List returns all user accounts.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListActive returns only enabled accounts.
func (h *UserHandler) ListActive(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.ListActive(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListByRole returns the users holding the role path parameter.
func (h *UserHandler) ListByRole(c echo.Context) error {
	role, ok := model.ParseRole(c.Param("role"))
	if !ok {
		return validationFailed(c, "Role inválida: "+c.Param("role"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.ListByRole(ctx, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetByID returns one account. Patients may only read their own.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}
	if isPatientPrincipal(c) && id != principalID(c) {
		return accessDenied(c)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// GetByUsername returns one account looked up by username.
func (h *UserHandler) GetByUsername(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return validationFailed(c, "Username inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update applies a partial account update. Patients may only update their own
// account and may not touch role or active.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}

	if isPatientPrincipal(c) {
		if id != principalID(c) {
			return accessDenied(c)
		}
		if req.Role != nil || req.Active != nil {
			return accessDenied(c)
		}
	}
	if req.Role != nil {
		role, ok := model.ParseRole(*req.Role)
		if !ok {
			return validationFailed(c, "Role inválida: "+*req.Role)
		}
		req.Role = &role
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, repository.UserUpdate{
		Nome:     req.Nome,
		Email:    req.Email,
		Telefone: req.Telefone,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Activate enables an account.
func (h *UserHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

// Deactivate disables an account and ends its active sessions, so existing
// refresh tokens stop working immediately.
func (h *UserHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *UserHandler) setActive(c echo.Context, active bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, active); err != nil {
		return respondError(c, err)
	}
	if !active {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			return respondError(c, err)
		}
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete hard-deletes an account.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return validationFailed(c, "ID inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
