package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"energyfit/config"
	"energyfit/internal/delivery/api/response"
	deliverycontext "energyfit/internal/delivery/context"
	"energyfit/internal/domain/constants"
	"energyfit/internal/domain/entity"
	"energyfit/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// LoginPath is where browser routes send anonymous visitors.
const LoginPath = "/login"

// SessionMiddleware binds the session cookie to a server-side session and guards routes.
type SessionMiddleware struct {
	sessions     usecase.SessionUsecase
	logger       *slog.Logger
	cookieName   string
	idleTimeout  time.Duration
	secureCookie bool
}

// SessionMiddlewareParams holds dependencies for SessionMiddleware, injected by Fx.
type SessionMiddlewareParams struct {
	fx.In

	Sessions usecase.SessionUsecase
	Config   *config.Config
	Logger   *slog.Logger
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(params SessionMiddlewareParams) *SessionMiddleware {
	m := &SessionMiddleware{
		sessions:    params.Sessions,
		logger:      params.Logger,
		cookieName:  constants.DefaultSessionCookieName,
		idleTimeout: 30 * time.Minute,
	}

	if cfg := params.Config.Session; cfg != nil {
		if cfg.CookieName != "" {
			m.cookieName = cfg.CookieName
		}
		if cfg.IdleTimeout > 0 {
			m.idleTimeout = cfg.IdleTimeout
		}
		m.secureCookie = cfg.SecureCookie
	}

	return m
}

// LoadSession resolves the session cookie, if any, and stores the session on the context.
// It never rejects a request; the guards below do.
func (m *SessionMiddleware) LoadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		session, err := m.sessions.Resolve(c.Request().Context(), cookie.Value)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Warn("Failed to resolve session", slog.Any("error", err))

			return next(c)
		}
		if session == nil {
			m.ClearCookie(c)

			return next(c)
		}

		deliverycontext.SetSession(c, cookie.Value, session)
		// Rolling cookie, matching the sliding server-side deadline.
		m.WriteCookie(c, cookie.Value)

		return next(c)
	}
}

// RequireAuthenticated rejects API requests without a session with 401.
func (m *SessionMiddleware) RequireAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if deliverycontext.GetSession(c) == nil {
			return response.Unauthorized(c)
		}

		return next(c)
	}
}

// RequireAuthenticatedWeb redirects browser requests without a session to the login page.
func (m *SessionMiddleware) RequireAuthenticatedWeb(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if deliverycontext.GetSession(c) == nil {
			return c.Redirect(http.StatusFound, LoginPath)
		}

		return next(c)
	}
}

// RequireKind lets through only sessions whose principal kind is in kinds.
// It must be used AFTER one of the authentication guards.
func (m *SessionMiddleware) RequireKind(kinds ...entity.PrincipalKind) echo.MiddlewareFunc {
	allowed := entity.PrincipalKinds(kinds)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := deliverycontext.GetSession(c)
			if session == nil || !allowed.Contains(session.Principal.Kind) {
				return response.Forbidden(c)
			}

			return next(c)
		}
	}
}

// WriteCookie hands the session id to the client.
func (m *SessionMiddleware) WriteCookie(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(m.idleTimeout / time.Second),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (m *SessionMiddleware) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
