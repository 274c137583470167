package auth

import (
	"errors" // Sentinel errors
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// TokenTTL is the fixed session token lifetime; expiry forces re-authentication.
const TokenTTL = 24 * time.Hour

// ErrInvalidToken covers malformed, forged and expired tokens alike so the
// caller cannot tell the cases apart.
var ErrInvalidToken = errors.New("invalid or expired token")

// JWT Claims
type Claims struct {
	UserID               string `json:"user_id"` // Custom claim for the subject identifier
	Role                 string `json:"role"`    // Custom claim for the role at issue time
	jwt.RegisteredClaims        // Standard JWT claims
}

// TokenIssuer issues and verifies signed, time-limited session tokens.
type TokenIssuer struct {
	Secret []byte        // Process-wide signing secret
	TTL    time.Duration // Token lifetime
}

// NewTokenIssuer creates an issuer with the fixed one-day token lifetime
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret), TTL: TokenTTL}
}

// Issue creates a JWT token encoding the subject identifier and role
func (i *TokenIssuer) Issue(userID, role string) (string, error) {
	// Set token claims
	claims := Claims{
		UserID: userID, // Subject identifier
		Role:   role,   // Role at issue time
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.TTL)), // Fixed expiry window
			IssuedAt:  jwt.NewNumericDate(time.Now()),            // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(i.Secret)                        // Sign the token with the secret
}

// Verify parses and validates a token string and returns its claims
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		// Only HMAC-signed tokens are accepted
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.Secret, nil // Return the secret key for validation
	})
	// Collapse every parse failure into the one sentinel
	if err != nil {
		return nil, ErrInvalidToken
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
