package auth

import (
	"testing"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "rentaldesk",
		Audience:  "rentaldesk",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", "manager", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if claims.Role != "manager" {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a"}
	token, _, err := GenerateAccessToken(cfg, "u-1", "staff", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := ParseAccessToken(config.AuthConfig{JWTSecret: "secret-b"}, token); err == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("Bearer abc.def.ghi"); !ok || tok != "abc.def.ghi" {
		t.Fatalf("unexpected: %q %v", tok, ok)
	}
	if _, ok := BearerToken("Basic abc"); ok {
		t.Fatalf("expected non-bearer header rejected")
	}
	if _, ok := BearerToken(""); ok {
		t.Fatalf("expected empty header rejected")
	}
}
