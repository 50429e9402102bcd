// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"energyfit/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register an administrator or a seller.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Kind     entity.PrincipalKind
	Phone    string // Kept for sellers only.
}

// LoginInput defines the credentials presented at login.
type LoginInput struct {
	Email    string
	Password string
}

// ResetPasswordInput redeems a recovery token for a new password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created principal.
type RegisterOutput struct {
	Principal *entity.Principal
}

// RecoveryTokenOutput describes an issued recovery token. Token is the only copy of the plaintext.
type RecoveryTokenOutput struct {
	Token     string
	ExpiresAt time.Time
}

// AuthUsecase defines registration, login and credential recovery.
type AuthUsecase interface {
	// Register creates a principal in the collection selected by input.Kind.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login checks administrators first, then sellers. A failed attempt returns (nil, nil)
	// without revealing which part was wrong.
	Login(ctx context.Context, input *LoginInput) (*entity.PrincipalView, error)

	// IssueRecoveryToken issues a token for the principal owning email and dispatches
	// instructions in the background. Unknown emails return (nil, nil).
	IssueRecoveryToken(ctx context.Context, email string) (*RecoveryTokenOutput, error)

	// ResetPasswordWithToken sets a new password and consumes the token. It reports
	// false for unknown, expired or already-consumed tokens.
	ResetPasswordWithToken(ctx context.Context, input *ResetPasswordInput) (bool, error)
}
