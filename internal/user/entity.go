// StockTrackHub | 2026
// entity.go

package user

import (
	"time"
)

// ExpiryLayout is the stored form of subscription_expiry. The column is
// TEXT on purpose: values written by older tooling may not parse, and the
// expiration sweep treats any unparsable value as already expired.
const ExpiryLayout = "2006-01-02"

type User struct {
	ID                 int64     `db:"id"`
	Email              string    `db:"email"`
	Username           string    `db:"username"`
	PasswordHash       string    `db:"password_hash"`
	Role               string    `db:"role"`
	Tier               string    `db:"tier"`
	BalanceUSD         float64   `db:"balance_usd"`
	SubscriptionExpiry *string   `db:"subscription_expiry"`
	CreatedAt          time.Time `db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ExpiryTime parses the stored expiry. A nil expiry or an unparsable
// value returns an error so callers fall back to the expired path.
func (u *User) ExpiryTime() (time.Time, error) {
	if u.SubscriptionExpiry == nil {
		return time.Time{}, errNoExpiry
	}
	return time.Parse(ExpiryLayout, *u.SubscriptionExpiry)
}

var errNoExpiry = &expiryError{"no subscription expiry set"}

type expiryError struct{ msg string }

func (e *expiryError) Error() string { return e.msg }

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	TierFree    = "Free"
	TierPro     = "Pro"
	TierPremium = "Premium"
)

func ValidTier(tier string) bool {
	switch tier {
	case TierFree, TierPro, TierPremium:
		return true
	}
	return false
}
