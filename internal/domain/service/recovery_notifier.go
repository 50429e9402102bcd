package service

import "context"

// RecoveryNotifier delivers password recovery instructions to a principal out of band.
type RecoveryNotifier interface {
	// SendRecoveryInstructions sends the token to the given address. Callers treat
	// failures as non-fatal: the token stays valid whether or not delivery succeeds.
	SendRecoveryInstructions(ctx context.Context, email, name, token string) error
}
