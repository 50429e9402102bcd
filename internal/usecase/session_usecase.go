package usecase

import (
	"context"

	"energyfit/internal/domain/entity"
)

// SessionUsecase manages the server-side sessions behind the session cookie.
type SessionUsecase interface {
	// Create opens a session for the principal and returns the opaque cookie value.
	Create(ctx context.Context, principal entity.PrincipalView) (string, *entity.Session, error)

	// Resolve returns the live session for a cookie value and slides its idle deadline.
	// Missing or expired sessions return (nil, nil).
	Resolve(ctx context.Context, sessionID string) (*entity.Session, error)

	// Destroy ends a session. Destroying an unknown session is not an error.
	Destroy(ctx context.Context, sessionID string) error

	// PurgeExpired deletes sessions past their idle deadline.
	PurgeExpired(ctx context.Context) (int64, error)
}
