// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher hashes and verifies principal passwords.
type PasswordHasher interface {
	// Hash generates a salted, adaptive hash of the plaintext.
	// Hashing the same input twice yields different encodings.
	Hash(password string) (string, error)

	// Check reports whether the plaintext matches the hash. A malformed hash never matches.
	Check(password, hash string) bool
}
