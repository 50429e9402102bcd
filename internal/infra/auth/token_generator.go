package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"energyfit/internal/domain/service"
	"energyfit/internal/errors"
)

// tokenBytes yields 256 bits of entropy per token.
const tokenBytes = 32

type randomTokenGenerator struct{}

// NewTokenGenerator returns a TokenGenerator backed by crypto/rand.
func NewTokenGenerator() service.TokenGenerator {
	return &randomTokenGenerator{}
}

// Generate returns a base64url token without padding.
func (g *randomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the hex SHA-256 digest of the token.
func (g *randomTokenGenerator) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
