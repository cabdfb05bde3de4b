package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/univexams/exam-portal/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testSession() *domain.Session {
	return &domain.Session{
		ID:            "sess-1",
		Authenticated: true,
		Identity:      &domain.UserIdentity{ID: "7", Username: "alice", Role: domain.RoleStudent},
	}
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)

	raw, exp, err := iss.Issue(testSession())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if exp.IsZero() {
		t.Fatalf("expected expiry")
	}

	claims, err := iss.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.Subject != "alice" || claims.Role != domain.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssuer_RejectsUnauthenticatedSession(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	if _, _, err := iss.Issue(&domain.Session{}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, _, err := iss.Issue(nil); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	issuedAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issuedAt }

	raw, _, err := iss.Issue(testSession())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	iss.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := iss.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	raw, _, err := NewIssuer(testSecret, time.Hour).Issue(testSession())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := NewIssuer("ffffffffffffffffffffffffffffffff", time.Hour)
	if _, err := other.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	tkn := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := tkn.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewIssuer(testSecret, time.Hour).Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_RejectsMissingSessionID(t *testing.T) {
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := tkn.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewIssuer(testSecret, time.Hour).Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
