package service

// TokenGenerator produces unguessable opaque tokens for password recovery and sessions.
type TokenGenerator interface {
	// Generate returns a new URL-safe token drawn from a cryptographically secure source.
	Generate() (string, error)

	// Hash returns the stable digest under which a token is stored.
	Hash(token string) string
}
