package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
)

func newTestTokenService(clock *testClock) *TokenService {
	svc := NewTokenService("secret", 30*time.Minute, 7*24*time.Hour)
	svc.now = clock.now
	return svc
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(clock)

	pair, err := svc.IssuePair("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("IssuePair returned error: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("unexpected token type %q", pair.TokenType)
	}

	claims, err := svc.Verify(pair.AccessToken, TokenTypeAccess)
	if err != nil {
		t.Fatalf("access token rejected: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" || claims.Type != TokenTypeAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.Verify(pair.RefreshToken, TokenTypeRefresh); err != nil {
		t.Fatalf("refresh token rejected: %v", err)
	}
}

func TestTokenService_TypeMismatch(t *testing.T) {
	svc := newTestTokenService(newTestClock())
	pair, _ := svc.IssuePair("user-1", "a@example.com")

	if _, err := svc.Verify(pair.AccessToken, TokenTypeRefresh); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected access token to fail as refresh, got %v", err)
	}
	if _, err := svc.Verify(pair.RefreshToken, TokenTypeAccess); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected refresh token to fail as access, got %v", err)
	}
}

func TestTokenService_Expiry(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(clock)
	pair, _ := svc.IssuePair("user-1", "a@example.com")

	clock.advance(29 * time.Minute)
	if _, err := svc.Verify(pair.AccessToken, TokenTypeAccess); err != nil {
		t.Fatalf("expected access token valid before expiry, got %v", err)
	}

	clock.advance(2 * time.Minute)
	if _, err := svc.Verify(pair.AccessToken, TokenTypeAccess); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired access token to fail, got %v", err)
	}
	if _, err := svc.Verify(pair.RefreshToken, TokenTypeRefresh); err != nil {
		t.Fatalf("expected refresh token still valid, got %v", err)
	}

	clock.advance(7 * 24 * time.Hour)
	if _, err := svc.Verify(pair.RefreshToken, TokenTypeRefresh); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired refresh token to fail, got %v", err)
	}
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	clock := newTestClock()
	svc := newTestTokenService(clock)

	other := NewTokenService("other-secret", time.Hour, time.Hour)
	other.now = clock.now
	foreign, _ := other.IssuePair("user-1", "a@example.com")
	if _, err := svc.Verify(foreign.AccessToken, TokenTypeAccess); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected bad signature to fail, got %v", err)
	}

	claims := Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(clock.now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(hs512, TokenTypeAccess); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected non-HS256 token to fail, got %v", err)
	}

	noExp := Claims{Type: TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString([]byte("secret"))
	if _, err := svc.Verify(tok, TokenTypeAccess); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected token without expiry to fail, got %v", err)
	}

	if _, err := svc.Verify("not-a-token", TokenTypeAccess); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected garbage to fail, got %v", err)
	}
}
