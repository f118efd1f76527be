// StockTrackHub | 2026
// entity.go

package portfolio

import (
	"time"
)

type Holding struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	Symbol        string    `db:"symbol"`
	Quantity      int64     `db:"quantity"`
	PurchasePrice float64   `db:"purchase_price"`
	PurchaseDate  time.Time `db:"purchase_date"`
}

func (h *Holding) Cost() float64 {
	return float64(h.Quantity) * h.PurchasePrice
}

type WatchlistEntry struct {
	ID      int64     `db:"id"`
	UserID  int64     `db:"user_id"`
	Symbol  string    `db:"symbol"`
	AddedAt time.Time `db:"added_at"`
}
