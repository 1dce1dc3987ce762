package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestIssueAndParseRoundTrip(t *testing.T) {
	token, err := Issue("s@x.com", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := Parse(token, testSecret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if subject != "s@x.com" {
		t.Fatalf("unexpected subject: %q", subject)
	}
}

func TestParseWrongSecret(t *testing.T) {
	token, err := Issue("s@x.com", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(token, "other-secret"); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := Issue("s@x.com", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(token, testSecret); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse("not.a.token", testSecret); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseMissingSubject(t *testing.T) {
	claims := jwtlib.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(token, testSecret); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}
