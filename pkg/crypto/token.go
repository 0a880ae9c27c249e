package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// OpaqueTokenBytes is the entropy of a single-use token (256 bits)
const OpaqueTokenBytes = 32

// TokenGenerator issues single-use opaque tokens and the digests stored in
// their place. The plaintext leaves the process only inside an emailed link.
type TokenGenerator struct {
	now func() time.Time
}

// NewTokenGenerator creates a token generator using the wall clock
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{now: time.Now}
}

// WithClock returns a copy of the generator reading time from now
func (g *TokenGenerator) WithClock(now func() time.Time) *TokenGenerator {
	return &TokenGenerator{now: now}
}

// GenerateOpaqueToken returns 32 random bytes, hex encoded (URL safe)
func (g *TokenGenerator) GenerateOpaqueToken() (string, error) {
	return GenerateRandomToken(OpaqueTokenBytes)
}

// Hash returns the deterministic SHA-256 digest used for storage and lookup
func (g *TokenGenerator) Hash(token string) string {
	return HashToken(token)
}

// Now returns the generator's current time
func (g *TokenGenerator) Now() time.Time {
	return g.now()
}

// ExpiryAt returns now + d
func (g *TokenGenerator) ExpiryAt(d time.Duration) time.Time {
	return g.now().Add(d)
}

// IsExpired reports whether t is not after the current time
func (g *TokenGenerator) IsExpired(t time.Time) bool {
	return !g.now().Before(t)
}

// HashToken returns the hex SHA-256 digest of token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
