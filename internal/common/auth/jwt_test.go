package auth

import (
	"testing"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/config"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "fleet-service",
		Audience:  "fleetshare",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", []string{"EMPLOYEE"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims := &struct {
		Roles []string `json:"roles"`
		jwt.RegisteredClaims
	}{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "EMPLOYEE" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestParseAccessToken_Roundtrip(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "fleet-service",
		Audience:  "fleetshare",
	}

	token, _, err := GenerateAccessToken(cfg, "u-2", []string{"MANAGER"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "u-2" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}

	bad := config.AuthConfig{JWTSecret: "other-secret", Issuer: cfg.Issuer}
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}
