// StockTrackHub | 2026
// jwt_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingmumo/stocktrackhub/internal/config"
	"github.com/kingmumo/stocktrackhub/internal/core"
)

func newTestJWTManager(
	t *testing.T,
	accessTTL time.Duration,
) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "jwt_private.pem")
	publicPath := filepath.Join(dir, "jwt_public.pem")

	if err := GenerateKeyPair(privatePath, publicPath); err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  accessTTL,
		RefreshTokenExpire: 24 * time.Hour,
		Issuer:             "stocktrackhub-test",
		Audience:           "stocktrackhub-api",
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	return manager
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := newTestJWTManager(t, 15*time.Minute)

	token, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: 42,
		Role:   "user",
		Tier:   "Pro",
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	claims, err := manager.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want user", claims.Role)
	}
	if claims.Tier != "Pro" {
		t.Errorf("Tier = %q, want Pro", claims.Tier)
	}
	if claims.JTI == "" {
		t.Error("expected a token ID")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := newTestJWTManager(t, 15*time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not a token", "definitely-not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.VerifyAccessToken(context.Background(), tt.token)
			if !errors.Is(err, core.ErrTokenInvalid) {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	manager := newTestJWTManager(t, 15*time.Minute)

	token, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: 7,
		Role:   "user",
		Tier:   "Free",
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token segments = %d, want 3", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = manager.VerifyAccessToken(context.Background(), tampered)
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	signer := newTestJWTManager(t, 15*time.Minute)
	verifier := newTestJWTManager(t, 15*time.Minute)

	token, err := signer.CreateAccessToken(AccessTokenClaims{
		UserID: 7,
		Role:   "user",
		Tier:   "Free",
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	_, err = verifier.VerifyAccessToken(context.Background(), token)
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	manager := newTestJWTManager(t, -time.Minute)

	token, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: 7,
		Role:   "user",
		Tier:   "Free",
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	_, err = manager.VerifyAccessToken(context.Background(), token)
	if !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	manager := newTestJWTManager(t, 15*time.Minute)

	data, err := manager.CreateRefreshToken()
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}

	if data.Token == "" || data.Hash == "" {
		t.Fatal("expected token and hash to be set")
	}
	if data.Token == data.Hash {
		t.Error("stored hash must differ from the raw token")
	}
	if data.Hash != core.HashToken(data.Token) {
		t.Error("hash does not match HashToken of the raw token")
	}
	if !core.CompareTokenHash(data.Token, data.Hash) {
		t.Error("CompareTokenHash should accept the matching pair")
	}
	if core.CompareTokenHash("other-token", data.Hash) {
		t.Error("CompareTokenHash should reject a different token")
	}
	if !data.ExpiresAt.After(time.Now()) {
		t.Error("refresh token should expire in the future")
	}
}
