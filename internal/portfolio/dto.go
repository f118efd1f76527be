// StockTrackHub | 2026
// dto.go

package portfolio

import (
	"time"
)

type BuyRequest struct {
	Symbol   string `json:"symbol"   validate:"required,min=1,max=20"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

type WatchRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=20"`
}

type HoldingResponse struct {
	ID            int64     `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Quantity      int64     `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	CurrentPrice  float64   `json:"current_price,omitempty"`
	MarketValue   float64   `json:"market_value,omitempty"`
	GainLoss      float64   `json:"gain_loss,omitempty"`
}

type PortfolioResponse struct {
	Holdings   []HoldingResponse `json:"holdings"`
	TotalValue float64           `json:"total_value"`
	TotalCost  float64           `json:"total_cost"`
}

type WatchlistResponse struct {
	Symbols []WatchlistEntryResponse `json:"symbols"`
}

type WatchlistEntryResponse struct {
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}
