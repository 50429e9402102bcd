// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"energyfit/internal/delivery/api/middleware"
	"energyfit/internal/delivery/api/response"
	deliverycontext "energyfit/internal/delivery/context"
	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/errors"
	"energyfit/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RecoveryExchangePath is the page where the token and the new password are typed in.
const RecoveryExchangePath = "/recuperar-senha-troca"

type registerRequest struct {
	Name     string `json:"nome_completo" form:"nome_completo"`
	Email    string `json:"email" form:"email" validate:"omitempty,email,max=255"`
	Password string `json:"senha" form:"senha"`
	Kind     string `json:"tipo" form:"tipo"`
	Phone    string `json:"telefone" form:"telefone" validate:"max=20"`
}

// normalize trims the free-text fields; it runs before validation.
func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"senha" form:"senha"`
}

type recoveryRequest struct {
	Email string `json:"email" form:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" form:"token"`
	Password string `json:"senha" form:"senha"`
}

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	auth     usecase.AuthUsecase
	sessions usecase.SessionUsecase
	session  *middleware.SessionMiddleware
	logger   *slog.Logger
}

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	Auth              usecase.AuthUsecase
	Sessions          usecase.SessionUsecase
	SessionMiddleware *middleware.SessionMiddleware
	Logger            *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		auth:     params.Auth,
		sessions: params.Sessions,
		session:  params.SessionMiddleware,
		logger:   params.Logger,
	}
}

// Register handles POST /auth/cadastro.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.Message())
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.auth.Register(c.Request().Context(), &usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Kind:     entity.PrincipalKind(req.Kind),
		Phone:    req.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, "Usuário cadastrado com sucesso!", map[string]int64{"id": output.Principal.ID})
}

// Login handles POST /auth/login and opens a session on success.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.Message())
	}

	ctx := c.Request().Context()

	view, err := h.auth.Login(ctx, &usecase.LoginInput{Email: strings.TrimSpace(req.Email), Password: req.Password})
	if err != nil {
		return errors.WithStack(err)
	}
	if view == nil {
		return response.FromAppError(c, domainerrors.ErrInvalidCredentials)
	}

	// A fresh id on every login; the previous one dies with it.
	if previous := deliverycontext.GetSessionID(c); previous != "" {
		if err := h.sessions.Destroy(ctx, previous); err != nil {
			deliverycontext.GetLoggerOrDefault(ctx, h.logger).Warn("Failed to destroy previous session", slog.Any("error", err))
		}
	}

	sessionID, _, err := h.sessions.Create(ctx, *view)
	if err != nil {
		return errors.WithStack(err)
	}
	h.session.WriteCookie(c, sessionID)

	return response.Success(c, http.StatusOK, "Login bem-sucedido", map[string]any{"usuario": view})
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sessionID := deliverycontext.GetSessionID(c); sessionID != "" {
		if err := h.sessions.Destroy(c.Request().Context(), sessionID); err != nil {
			return errors.WithStack(err)
		}
	}
	h.session.ClearCookie(c)

	if wantsJSON(c) {
		return c.NoContent(http.StatusNoContent)
	}

	return c.Redirect(http.StatusFound, "/")
}

// Session handles GET /auth/sessao.
func (h *AuthHandler) Session(c echo.Context) error {
	session := deliverycontext.GetSession(c)
	if session == nil {
		return response.Unauthorized(c)
	}

	return response.Success(c, http.StatusOK, "", session.Principal)
}

// IssueRecovery handles POST /auth/recuperar-senha.
func (h *AuthHandler) IssueRecovery(c echo.Context) error {
	var req recoveryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.Message())
	}

	ctx := c.Request().Context()

	output, err := h.auth.IssueRecoveryToken(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if appErr, ok := response.ClientError(err); ok {
			return response.FromAppError(c, appErr)
		}
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Error("Failed to issue recovery token", slog.Any("error", err))

		return response.FromAppError(c, domainerrors.ErrTransientStore)
	}
	if output == nil {
		return response.FromAppError(c, domainerrors.ErrEmailNotFound)
	}

	return c.Redirect(http.StatusFound, RecoveryExchangePath)
}

// ResetPassword handles POST /auth/alterar-senha.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.Message())
	}

	ctx := c.Request().Context()

	reset, err := h.auth.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: strings.TrimSpace(req.Token), NewPassword: req.Password})
	if err != nil {
		if appErr, ok := response.ClientError(err); ok {
			return response.FromAppError(c, appErr)
		}
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Error("Failed to reset password", slog.Any("error", err))

		return response.FromAppError(c, domainerrors.ErrTransientStore)
	}
	if !reset {
		return response.FromAppError(c, domainerrors.ErrRecoveryTokenInvalid)
	}

	return response.Success(c, http.StatusOK, "Senha alterada com sucesso.", nil)
}

// wantsJSON reports whether the client asked for a JSON answer instead of a redirect.
func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
