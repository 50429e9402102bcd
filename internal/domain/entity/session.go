package entity

import "time"

// Session binds a client cookie to an authenticated principal for a bounded idle period.
type Session struct {
	IDHash    string // SHA-256 of the cookie value.
	Principal PrincipalView
	ExpiresAt time.Time // Sliding: pushed forward on every resolved request.
	CreatedAt time.Time
}

// IsExpired reports whether the session has been idle past its deadline at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
