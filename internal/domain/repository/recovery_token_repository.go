package repository

import (
	"context"

	"energyfit/internal/domain/entity"
)

// RecoveryTokenRepository persists outstanding password recovery tokens.
// Tokens are addressed by their hash; the plaintext never reaches the store.
type RecoveryTokenRepository interface {
	// Create stores a new token row.
	Create(ctx context.Context, token *entity.RecoveryToken) error

	// FindByTokenHash returns the token row or ErrRecoveryTokenNotFound.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.RecoveryToken, error)

	// DeleteByTokenHash removes the token row. When no row was removed it returns
	// ErrRecoveryTokenNotFound, so among concurrent callers exactly one succeeds.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}
