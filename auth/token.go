package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"relay-lab/domain"
	"relay-lab/errors"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies signed credentials presented at connect time.
// The secret is injected from configuration; an Authenticator without a
// secret rejects every token (fail-closed).
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Verify parses and validates the signature and expiration of a JWT
// string, then resolves the caller identity from its claims. It has no
// side effects; the result is a pure function of the token and the
// configured secret.
func (a *Authenticator) Verify(tokenString string) (domain.Identity, error) {
	if len(a.secret) == 0 {
		return domain.Identity{}, errors.ErrNoSecret
	}
	if tokenString == "" {
		return domain.Identity{}, errors.ErrMissingCredential
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return domain.Identity{}, errors.ErrInvalidCredential
	}

	return domain.Identity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

// GenerateToken creates a signed JWT for a specific user.
// Used by the token CLI and by tests; the relay itself only verifies.
func GenerateToken(secret, subject, name, email string, ttl time.Duration) (string, error) {
	claims := &CustomClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "relay-lab",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
