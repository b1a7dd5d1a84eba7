package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified result of a bearer credential check. Role is
// deliberately absent: the users table is the only source of truth for
// authorization, tokens only establish who the caller is.
type Identity struct {
	Subject string
	Email   string
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

type HSVerifier struct {
	secret []byte
}

func NewHSVerifier(secret string) *HSVerifier {
	return &HSVerifier{secret: []byte(secret)}
}

func (v *HSVerifier) Verify(tokenString string) (*Identity, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("token missing email claim")
	}
	return &Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

// NewToken mints a token the HSVerifier accepts. Used by the dev token tool
// and by tests; production tokens come from the identity provider.
func NewToken(subject, email, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{"residency-api"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
