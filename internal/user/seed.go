// StockTrackHub | 2026
// seed.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kingmumo/stocktrackhub/internal/config"
	"github.com/kingmumo/stocktrackhub/internal/core"
)

// EnsureAdmin creates the reserved operator account on first start and
// returns its ID. Subsequent starts find the existing row and leave it
// untouched, so the seed is safe to run on every boot.
func EnsureAdmin(
	ctx context.Context,
	repo Repository,
	cfg config.AdminConfig,
	logger *slog.Logger,
) (int64, error) {
	existing, err := repo.GetByUsername(ctx, cfg.Username)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return 0, fmt.Errorf("lookup admin: %w", err)
	}

	password := cfg.Password
	if password == "" {
		password, err = core.GenerateSecureToken(16)
		if err != nil {
			return 0, fmt.Errorf("generate admin password: %w", err)
		}
		logger.Warn("admin password not configured, generated one-time password",
			"username", cfg.Username,
			"password", password,
		)
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &User{
		Email:        cfg.Email,
		Username:     cfg.Username,
		PasswordHash: hash,
		Role:         RoleAdmin,
		Tier:         TierPremium,
		BalanceUSD:   cfg.InitialBalance,
	}

	if err := repo.Create(ctx, admin); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			// Lost a race with a concurrent boot. Re-read the winner.
			existing, err = repo.GetByUsername(ctx, cfg.Username)
			if err != nil {
				return 0, fmt.Errorf("re-read admin: %w", err)
			}
			return existing.ID, nil
		}
		return 0, fmt.Errorf("create admin: %w", err)
	}

	logger.Info("seeded admin account",
		"username", admin.Username,
		"user_id", admin.ID,
	)

	return admin.ID, nil
}
