package context

import (
	"context"

	"energyfit/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

const (
	// KeySession is the echo.Context key holding the resolved *entity.Session.
	KeySession ContextKey = "session"

	// KeySessionID is the echo.Context key holding the raw cookie value.
	KeySessionID ContextKey = "session_id"

	// KeyPrincipal is the context.Context key holding the authenticated principal view.
	KeyPrincipal ContextKey = "principal"
)

// SetSession stores a resolved session and its cookie value on the echo.Context,
// and exposes the principal to the service layer through the request context.
func SetSession(c echo.Context, sessionID string, session *entity.Session) {
	c.Set(string(KeySession), session)
	c.Set(string(KeySessionID), sessionID)

	ctx := WithPrincipal(c.Request().Context(), session.Principal)
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetSession returns the session resolved for this request, or nil.
func GetSession(c echo.Context) *entity.Session {
	if session, ok := c.Get(string(KeySession)).(*entity.Session); ok {
		return session
	}

	return nil
}

// GetSessionID returns the raw session cookie value of a resolved session, or "".
func GetSessionID(c echo.Context) string {
	if id, ok := c.Get(string(KeySessionID)).(string); ok {
		return id
	}

	return ""
}

// WithPrincipal returns a new context carrying the principal view.
func WithPrincipal(ctx context.Context, principal entity.PrincipalView) context.Context {
	return context.WithValue(ctx, KeyPrincipal, principal)
}

// GetPrincipalFromContext returns the principal of the request, if authenticated.
func GetPrincipalFromContext(ctx context.Context) (entity.PrincipalView, bool) {
	principal, ok := ctx.Value(KeyPrincipal).(entity.PrincipalView)

	return principal, ok
}
