// Package token issues and verifies the bearer tokens that name a
// server-side session.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/univexams/exam-portal/internal/core/domain"
)

const issuer = "exam-portal"

var ErrInvalidToken = errors.New("invalid token")

// Claims identify a session. The session record stays authoritative for
// idle expiry and logout; the token only bounds the absolute session age.
type Claims struct {
	SessionID string      `json:"sid"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, maxAge time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

// Issue signs a token for an authenticated session and returns it with its
// expiry time.
func (i *Issuer) Issue(s *domain.Session) (string, time.Time, error) {
	if s == nil || !s.Authenticated || s.Identity == nil || s.ID == "" {
		return "", time.Time{}, domain.ErrNotAuthenticated
	}

	now := i.now()
	exp := now.Add(i.maxAge)
	claims := Claims{
		SessionID: s.ID,
		Role:      s.Identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.Identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies raw and returns its claims. Any failure is reported as
// ErrInvalidToken.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
