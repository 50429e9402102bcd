package entity

import "time"

// RecoveryToken is a single-use secret that allows a password reset without the old password.
// Several tokens may be outstanding for the same principal at once.
type RecoveryToken struct {
	PrincipalID   int64
	PrincipalKind PrincipalKind // Stored as data; validated again when redeemed.
	TokenHash     string        // SHA-256 of the token handed to the principal.
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// IsExpired reports whether the token's validity window has passed at now.
func (t *RecoveryToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
