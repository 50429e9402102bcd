package repository

import (
	"context"
	"time"

	"energyfit/internal/domain/entity"
)

// SessionRepository is the server-side session store.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByIDHash returns the session or ErrSessionNotFound.
	FindByIDHash(ctx context.Context, idHash string) (*entity.Session, error)

	// Touch moves the idle deadline of a session forward.
	Touch(ctx context.Context, idHash string, expiresAt time.Time) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, idHash string) error

	// DeleteExpired purges sessions whose deadline is before now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
