// StockTrackHub | 2026
// entity.go

package billing

import (
	"time"

	"github.com/kingmumo/stocktrackhub/internal/user"
)

// Payment request lifecycle. Pending is the only state that permits a
// transition; Approved and Rejected are terminal.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type PaymentRequest struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	Amount          float64   `db:"amount"`
	ReferenceNumber string    `db:"reference_number"`
	Status          string    `db:"status"`
	SubmittedAt     time.Time `db:"submitted_at"`
}

func (p *PaymentRequest) IsPending() bool {
	return p.Status == StatusPending
}

// PendingRequest is a queue row joined with the submitter's username for
// the operator review screen.
type PendingRequest struct {
	PaymentRequest
	Username string `db:"username"`
}

type Wallet struct {
	UserID     int64   `db:"user_id"`
	BalanceUSD float64 `db:"balance_usd"`
}

// Payment amounts are denominated in KES. The platform keeps 2% of each
// approved payment, credited to the operator wallet in USD.
const (
	feePercent       = 0.02
	kesPerUSD        = 130.0
	subscriptionDays = 30
)

// TierPrices maps each paid tier to its exact subscription price in KES.
var TierPrices = map[string]float64{
	user.TierPro:     1000,
	user.TierPremium: 2500,
}

// TierForAmount maps a payment amount to the tier it buys. Amounts that
// match no tier price resolve to Free; approval still succeeds but grants
// nothing beyond the base tier.
func TierForAmount(amount float64) string {
	switch amount {
	case TierPrices[user.TierPro]:
		return user.TierPro
	case TierPrices[user.TierPremium]:
		return user.TierPremium
	}
	return user.TierFree
}

// FeeUSD converts the platform's cut of a KES payment into USD.
func FeeUSD(amount float64) float64 {
	return amount * feePercent / kesPerUSD
}
