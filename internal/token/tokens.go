// Package token emite y valida los tokens de sesión HS256.
//
// El token es la credencial opaca para el cliente; el servidor guarda la
// sesión bajo "sid:"+SHA256 del token, nunca el token crudo.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indica firma inválida o claims malformadas.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken indica que el token ya expiró.
	ErrExpiredToken = errors.New("expired session token")
)

// Issuer firma tokens de sesión con un secreto HS256.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewIssuer crea un Issuer. El secreto debe tener al menos 32 bytes.
func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token: signing secret must be at least 32 bytes")
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// SessionClaims son las claims mínimas de un token de sesión.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Mint emite un token de sesión para una identidad.
// Retorna el token firmado y su instante de expiración.
func (i *Issuer) Mint(identityID, email string, now time.Time) (string, time.Time, error) {
	exp := now.Add(i.ttl)
	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        randomID(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma y expiración y retorna las claims.
func (i *Issuer) Parse(raw string) (*SessionClaims, error) {
	var claims SessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding
// (para claves de cache, nunca guardar el token crudo).
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func randomID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
