// StockTrackHub | 2026
// dto.go

package billing

import (
	"time"
)

type SubmitPaymentRequest struct {
	Amount          float64 `json:"amount"           validate:"required,gt=0"`
	ReferenceNumber string  `json:"reference_number" validate:"required,min=1,max=64"`
}

type PaymentRequestResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Amount          float64   `json:"amount"`
	ReferenceNumber string    `json:"reference_number"`
	Status          string    `json:"status"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type PendingRequestResponse struct {
	PaymentRequestResponse
	Username string `json:"username"`
}

type ApprovalResponse struct {
	Request PaymentRequestResponse `json:"request"`
	Tier    string                 `json:"tier"`
	Expiry  *string                `json:"subscription_expiry,omitempty"`
	FeeUSD  float64                `json:"fee_usd"`
}

type WalletResponse struct {
	UserID     int64   `json:"user_id"`
	BalanceUSD float64 `json:"balance_usd"`
}

type TierInfo struct {
	Name     string  `json:"name"`
	PriceKES float64 `json:"price_kes"`
}

type TiersResponse struct {
	Tiers []TierInfo `json:"tiers"`
}

type SweepResponse struct {
	Downgraded int `json:"downgraded"`
}

func ToPaymentRequestResponse(p *PaymentRequest) PaymentRequestResponse {
	return PaymentRequestResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		Amount:          p.Amount,
		ReferenceNumber: p.ReferenceNumber,
		Status:          p.Status,
		SubmittedAt:     p.SubmittedAt,
	}
}

func ToPendingRequestResponses(rows []PendingRequest) []PendingRequestResponse {
	out := make([]PendingRequestResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, PendingRequestResponse{
			PaymentRequestResponse: ToPaymentRequestResponse(&row.PaymentRequest),
			Username:               row.Username,
		})
	}
	return out
}

func ToPaymentRequestResponses(rows []PaymentRequest) []PaymentRequestResponse {
	out := make([]PaymentRequestResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToPaymentRequestResponse(&rows[i]))
	}
	return out
}
