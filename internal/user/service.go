// StockTrackHub | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingmumo/stocktrackhub/internal/auth"
	"github.com/kingmumo/stocktrackhub/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// GetByLogin resolves a login identifier. Users sign in with either
// their username or their email address.
func (s *Service) GetByLogin(
	ctx context.Context,
	identifier string,
) (*auth.UserInfo, error) {
	if strings.Contains(identifier, "@") {
		user, err := s.repo.GetByEmail(ctx, strings.ToLower(identifier))
		if err == nil {
			return toUserInfo(user), nil
		}
	}

	user, err := s.repo.GetByUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, username, passwordHash string,
) (*auth.UserInfo, error) {
	user := &User{
		Email:        strings.ToLower(email),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Tier:         TierFree,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// UpdateUserTier is the operator override. Granting a paid tier starts a
// fresh thirty day window; revoking to Free clears the expiry.
func (s *Service) UpdateUserTier(
	ctx context.Context,
	id int64,
	tier string,
) (*User, error) {
	if !ValidTier(tier) {
		return nil, fmt.Errorf(
			"update tier: invalid tier %q: %w",
			tier,
			core.ErrInvalidInput,
		)
	}

	var expiry *string
	if tier != TierFree {
		e := time.Now().UTC().AddDate(0, 0, 30).Format(ExpiryLayout)
		expiry = &e
	}

	if err := s.repo.UpdateTierAndExpiry(ctx, id, tier, expiry); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func (s *Service) UsernameExists(
	ctx context.Context,
	username string,
) (bool, error) {
	return s.repo.ExistsByUsername(ctx, username)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Tier:         u.Tier,
	}
}

var _ auth.UserProvider = (*Service)(nil)
