package ticket

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"teatroqr/internal/domain"
)

const nonceBytes = 16

type blake2bGenerator struct{}

// NewGenerator returns a TokenGenerator that hashes email and salt with BLAKE2b-256
// and encodes the digest as unpadded base64url, so the token is URL safe.
func NewGenerator() domain.TokenGenerator {
	return &blake2bGenerator{}
}

// GenerateSalt mixes the work id with a random nonce, so two registrations never share a salt.
func (g *blake2bGenerator) GenerateSalt(workID string) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return workID + "." + hex.EncodeToString(nonce), nil
}

func (g *blake2bGenerator) Derive(email, salt string) string {
	sum := blake2b.Sum256([]byte(email + "-" + salt))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
