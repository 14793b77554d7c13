package auth

import (
	"errors"
	"time"

	"github.com/avolkov/filevault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims; the authenticated username
// travels in the Subject ("sub") claim.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer creates and verifies signed, time-bound bearer tokens (HS256).
// The zero value is not usable; construct with NewTokenIssuer.
type TokenIssuer struct {
	secretKey  []byte
	defaultTTL time.Duration
}

func NewTokenIssuer(secretKey []byte, defaultTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secretKey: secretKey, defaultTTL: defaultTTL}
}

// Issue produces a signed token for subject expiring after ttl.
// A zero ttl selects the issuer's default; a negative ttl yields a token that
// is already expired.
func (i *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = i.defaultTTL
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(i.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// subject. Failures map to sentinel errors: common.ErrTokenExpired for
// expired tokens, common.ErrInvalidToken for everything else (bad signature,
// malformed token, missing subject). Callers at the transport boundary must
// collapse all of them into one generic unauthorized response.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
