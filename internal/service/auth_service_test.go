package service

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/flashmind/flashmind-backend/internal/config"
	"github.com/flashmind/flashmind-backend/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		RefreshExpiry: 24 * time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	auth := NewAuthService(testConfig())

	hash, err := auth.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := auth.CheckPassword(hash, "correct horse battery"); err != nil {
		t.Errorf("CheckPassword with right password: %v", err)
	}
	if err := auth.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword with wrong password = %v, want ErrInvalidCredentials", err)
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	auth := NewAuthService(testConfig())

	token, err := auth.GenerateAccessToken("alice@example.com", model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := auth.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Subject != "alice@example.com" {
		t.Errorf("Subject = %q", claims.Subject)
	}
	if claims.Role != model.RoleStudent {
		t.Errorf("Role = %q", claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %q", claims.TokenType)
	}
}

func TestRefreshTokenRejectedOnAccessRoutes(t *testing.T) {
	auth := NewAuthService(testConfig())

	refresh, err := auth.GenerateRefreshToken("alice@example.com", model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	if _, err := auth.ValidateAccessToken(refresh); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("error = %v, want ErrWrongTokenType", err)
	}
}

func TestTokenSignatureChecked(t *testing.T) {
	auth := NewAuthService(testConfig())
	other := NewAuthService(&config.Config{JWTSecret: "another-secret", JWTExpiry: time.Hour, RefreshExpiry: time.Hour, BcryptCost: bcrypt.MinCost})

	token, err := other.GenerateAccessToken("alice@example.com", model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := auth.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpiry = -time.Minute
	auth := NewAuthService(cfg)

	token, err := auth.GenerateAccessToken("alice@example.com", model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := auth.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}
