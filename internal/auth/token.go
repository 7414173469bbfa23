package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AccessTokenTTL is the lifetime of every issued access token.
const AccessTokenTTL = 30 * time.Minute

// ErrInvalidToken covers every way a bearer token can fail verification.
var ErrInvalidToken = errors.New("could not validate credentials")

// tokenClaims defers time checks to Tokens so the leeway and clock are
// applied consistently by Verify and Guard.
type tokenClaims struct {
	jwt.RegisteredClaims
}

func (tokenClaims) Valid() error { return nil }

// Tokens issues and verifies HS256 access tokens whose subject is the user's
// email.
type Tokens struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

func NewTokens(secret string, leeway time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), leeway: leeway, now: time.Now}
}

// Issue signs a token for subject that expires AccessTokenTTL from now.
func (t *Tokens) Issue(subject string) (string, error) {
	now := t.now()
	claims := tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its subject.
func (t *Tokens) Verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &tokenClaims{}, t.keyFunc)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return t.Subject(token)
}

// Subject checks the expiry and subject of an already parsed token.
func (t *Tokens) Subject(token *jwt.Token) (string, error) {
	if token == nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(t.now().Add(-t.leeway), true) {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (t *Tokens) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
	return t.secret, nil
}
