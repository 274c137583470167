package auth

import "golang.org/x/crypto/bcrypt" // Password hashing

// PasswordHasher performs salted one-way password hashing and verification.
type PasswordHasher struct {
	Cost int // Bcrypt work factor, tunable
}

// NewPasswordHasher returns a hasher with the default bcrypt work factor
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{Cost: bcrypt.DefaultCost}
}

// Hash derives a salted one-way hash of the plaintext
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	// Fall back to the default work factor for a zero-value hasher
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err // Underlying primitive failure only
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash.
// An empty or malformed hash never verifies; the comparison itself is
// constant-time inside bcrypt.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
