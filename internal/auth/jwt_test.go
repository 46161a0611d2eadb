package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken(42, "reader@example.com", "AUTHOR")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if claims.UserID != 42 || claims.Email != "reader@example.com" || claims.Role != "AUTHOR" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateAccessToken(1, "a@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := NewJWTService("secret-b").VerifyToken(token)
	if err == nil {
		t.Fatal("expected verification to fail for a different secret")
	}
	if claims != nil {
		t.Fatalf("expected nil claims on failure, got %+v", claims)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := NewJWTServiceWithClock("test-secret", func() time.Time { return past })

	token, err := issuer.GenerateAccessToken(7, "late@example.com", "SUBSCRIBER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	verifier := NewJWTService("test-secret")
	if _, err := verifier.VerifyToken(token); err == nil {
		t.Fatal("expected verification to fail for an expired token")
	}
}

func TestVerifyTokenHonorsInjectedClock(t *testing.T) {
	issuer := NewJWTService("test-secret")
	token, err := issuer.GenerateAccessToken(7, "clock@example.com", "SUBSCRIBER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	future := time.Now().Add(AccessTokenExpiry + time.Minute)
	verifier := NewJWTServiceWithClock("test-secret", func() time.Time { return future })
	if _, err := verifier.VerifyToken(token); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired from the injected clock, got %v", err)
	}
}

func TestGenerateAccessTokenUniquePerCall(t *testing.T) {
	// a frozen clock gives identical iat/exp; the jti must still differ
	frozen := time.Now()
	svc := NewJWTServiceWithClock("test-secret", func() time.Time { return frozen })

	first, err := svc.GenerateAccessToken(9, "same@example.com", "SUBSCRIBER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	second, err := svc.GenerateAccessToken(9, "same@example.com", "SUBSCRIBER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct tokens for back-to-back logins")
	}

	claims, err := svc.VerifyToken(first)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected a token id claim")
	}
}

func TestNewOpaqueTokenIsUnique(t *testing.T) {
	a, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	b, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty tokens, got %q and %q", a, b)
	}
}
