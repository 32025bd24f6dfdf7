package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
)

const (
	RoleAdmin = "admin"
	issuer    = "message-board"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c CustomClaims) HasRole(role string) bool {
	return lo.Contains(c.Roles, role)
}

// Tokenizer signs and validates HS256 tokens with a shared secret.
type Tokenizer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenizer(secret string, duration time.Duration) Tokenizer {
	return Tokenizer{secret: []byte(secret), duration: duration, now: time.Now}
}

// Generate creates a signed JWT for a subject holding the given roles.
func (t Tokenizer) Generate(subject string, roles []string) (string, error) {
	now := t.now()
	claims := &CustomClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses and validates the signature and expiration of a JWT string.
func (t Tokenizer) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
