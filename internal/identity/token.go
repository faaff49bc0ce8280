package identity

import (
	"errors"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

const tokenTypeSession = "session"

type sessionClaims struct {
	Role Role   `json:"role"`
	Typ  string `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (t *Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tokens) Issue(u User) (string, error) {
	now := t.now()
	claims := sessionClaims{
		Role: u.Role,
		Typ:  tokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

func (t *Tokens) Verify(token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperr.E(apperr.Unauthenticated, "login required")
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, apperr.E(apperr.Unauthenticated, "session expired")
		}
		return Principal{}, apperr.E(apperr.Unauthenticated, "invalid session")
	}
	if claims.Typ != tokenTypeSession || claims.Subject == "" {
		return Principal{}, apperr.E(apperr.Unauthenticated, "invalid session")
	}
	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
