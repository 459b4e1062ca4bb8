package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/config"
	"github.com/rmoreira/clinic-scheduler/internal/model"
	"github.com/rmoreira/clinic-scheduler/internal/repository"
	"github.com/rmoreira/clinic-scheduler/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nome     string `json:"nome"`
	Telefone string `json:"telefone"`
	Role     string `json:"role"` // ignored by Register/Bootstrap; required by the staff create endpoint
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

func validateRegister(req *registerReq) []FieldError {
	var fields []FieldError
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Nome = strings.TrimSpace(req.Nome)
	if req.Username == "" {
		fields = append(fields, FieldError{Field: "username", Message: "não pode estar vazio"})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields = append(fields, FieldError{Field: "email", Message: "deve ser um email válido"})
	}
	if len(req.Password) < 6 {
		fields = append(fields, FieldError{Field: "password", Message: "deve ter no mínimo 6 caracteres"})
	}
	if req.Nome == "" {
		fields = append(fields, FieldError{Field: "nome", Message: "não pode estar vazio"})
	}
	return fields
}

// Register creates a patient account. The submitted role is ignored: public
// registration always yields PACIENTE; clinical staff are provisioned by a
// doctor through /api/users or via bootstrap.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}
	if fields := validateRegister(&req); len(fields) > 0 {
		return validationFailed(c, "Dados de cadastro inválidos", fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Nome:     req.Nome,
		Telefone: req.Telefone,
		Role:     model.RolePaciente,
	}
	if err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Bootstrap creates the first account of an empty installation and forces the
// MEDICO role so someone can provision the rest of the staff. Once any user
// exists the endpoint refuses to run.
func (h *AuthHandler) Bootstrap(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}
	if fields := validateRegister(&req); len(fields) > 0 {
		return validationFailed(c, "Dados de cadastro inválidos", fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Users.Count(ctx)
	if err != nil {
		return respondError(c, err)
	}
	if n > 0 {
		return businessError(c, "Bootstrap indisponível: já existem usuários cadastrados")
	}

	u := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Nome:     req.Nome,
		Telefone: req.Telefone,
		Role:     model.RoleMedico,
	}
	if err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Login verifies credentials and returns the user plus a fresh token pair.
// Unknown users, wrong passwords and deactivated accounts all answer the same
// 401 so the response does not leak which part failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "Corpo da requisição inválido")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return validationFailed(c, "Informe username e password")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		var nf *repository.NotFoundError
		if errors.As(err, &nf) {
			return authFailed(c, "Credenciais inválidas")
		}
		return respondError(c, err)
	}
	if !u.Active || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return authFailed(c, "Credenciais inválidas")
	}

	resp, err := h.issuePair(c, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates the refresh token: the presented token is revoked and a new
// pair is issued for its owner.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return validationFailed(c, "Informe refreshToken")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authFailed(c, "Refresh token inválido ou expirado")
		}
		return respondError(c, err)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	if !u.Active {
		return authFailed(c, "Credenciais inválidas")
	}

	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return respondError(c, err)
	}
	resp, err := h.issuePair(c, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the presented refresh token. Returns 204 whether or not the
// token was still active.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return validationFailed(c, "Informe refreshToken")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, principalID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) issuePair(c echo.Context, u *model.User) (*authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}
