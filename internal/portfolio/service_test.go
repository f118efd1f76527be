// StockTrackHub | 2026
// service_test.go

package portfolio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kingmumo/stocktrackhub/internal/core"
	"github.com/kingmumo/stocktrackhub/internal/market"
	"github.com/kingmumo/stocktrackhub/internal/user"
)

// fixedQuotes serves canned prices so trading tests never touch the
// network.
type fixedQuotes struct {
	prices map[string]float64
}

func (f *fixedQuotes) GetQuote(
	_ context.Context,
	symbol string,
) (*market.Quote, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return nil, market.ErrQuoteUnavailable
	}
	return &market.Quote{
		Symbol:       symbol,
		Name:         market.DisplayName(symbol),
		CurrentPrice: price,
	}, nil
}

func newTestPortfolioService(
	t *testing.T,
	prices map[string]float64,
) (*Service, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := core.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(
		db,
		NewRepository(db),
		user.NewRepository(db),
		&fixedQuotes{prices: prices},
		logger,
	)

	return svc, db
}

func seedTrader(
	t *testing.T,
	db *sqlx.DB,
	tier string,
	balance float64,
) *user.User {
	t.Helper()

	u := &user.User{
		Email:        "trader@test.local",
		Username:     "trader",
		PasswordHash: "x",
		Role:         user.RoleUser,
		Tier:         tier,
		BalanceUSD:   balance,
	}
	if err := user.NewRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seed trader: %v", err)
	}

	return u
}

func traderBalance(t *testing.T, db *sqlx.DB, userID int64) float64 {
	t.Helper()

	u, err := user.NewRepository(db).GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get trader: %v", err)
	}

	return u.BalanceUSD
}

func TestBuy(t *testing.T) {
	svc, db := newTestPortfolioService(t, map[string]float64{
		"RELIANCE.NS": 100,
	})
	trader := seedTrader(t, db, user.TierPro, 1000)

	holding, err := svc.Buy(context.Background(), trader.ID, BuyRequest{
		Symbol:   "RELIANCE.NS",
		Quantity: 3,
	})
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if holding.ID == 0 {
		t.Error("expected holding ID to be assigned")
	}
	if holding.PurchasePrice != 100 {
		t.Errorf("purchase price = %v, want 100", holding.PurchasePrice)
	}

	if balance := traderBalance(t, db, trader.ID); balance != 700 {
		t.Errorf("balance = %v, want 700", balance)
	}
}

func TestBuyRequiresPaidTier(t *testing.T) {
	svc, db := newTestPortfolioService(t, map[string]float64{
		"RELIANCE.NS": 100,
	})
	trader := seedTrader(t, db, user.TierFree, 1000)

	_, err := svc.Buy(context.Background(), trader.ID, BuyRequest{
		Symbol:   "RELIANCE.NS",
		Quantity: 1,
	})
	if !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestBuyInsufficientBalance(t *testing.T) {
	svc, db := newTestPortfolioService(t, map[string]float64{
		"RELIANCE.NS": 100,
	})
	trader := seedTrader(t, db, user.TierPro, 50)

	_, err := svc.Buy(context.Background(), trader.ID, BuyRequest{
		Symbol:   "RELIANCE.NS",
		Quantity: 1,
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	// The failed purchase leaves no holding and an untouched balance.
	resp, err := svc.GetPortfolio(context.Background(), trader.ID)
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if len(resp.Holdings) != 0 {
		t.Errorf("holdings = %d, want 0", len(resp.Holdings))
	}
	if balance := traderBalance(t, db, trader.ID); balance != 50 {
		t.Errorf("balance = %v, want 50", balance)
	}
}

func TestSell(t *testing.T) {
	svc, db := newTestPortfolioService(t, map[string]float64{
		"RELIANCE.NS": 100,
	})
	trader := seedTrader(t, db, user.TierPro, 1000)

	holding, err := svc.Buy(context.Background(), trader.ID, BuyRequest{
		Symbol:   "RELIANCE.NS",
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	proceeds, err := svc.Sell(context.Background(), trader.ID, holding.ID)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if proceeds != 200 {
		t.Errorf("proceeds = %v, want 200", proceeds)
	}

	if balance := traderBalance(t, db, trader.ID); balance != 1000 {
		t.Errorf("balance = %v, want 1000 after round trip", balance)
	}

	// Selling the same holding again fails.
	_, err = svc.Sell(context.Background(), trader.ID, holding.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("repeat sell: expected ErrNotFound, got %v", err)
	}
}

func TestSellForeignHolding(t *testing.T) {
	svc, db := newTestPortfolioService(t, map[string]float64{
		"RELIANCE.NS": 100,
	})
	owner := seedTrader(t, db, user.TierPro, 1000)

	other := &user.User{
		Email:        "other@test.local",
		Username:     "other",
		PasswordHash: "x",
		Role:         user.RoleUser,
		Tier:         user.TierPro,
	}
	if err := user.NewRepository(db).Create(context.Background(), other); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	holding, err := svc.Buy(context.Background(), owner.ID, BuyRequest{
		Symbol:   "RELIANCE.NS",
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	_, err = svc.Sell(context.Background(), other.ID, holding.ID)
	if !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestGetPortfolioValuation(t *testing.T) {
	svc, db := newTestPortfolioService(t, map[string]float64{
		"RELIANCE.NS": 100,
	})
	trader := seedTrader(t, db, user.TierPremium, 10000)

	if _, err := svc.Buy(context.Background(), trader.ID, BuyRequest{
		Symbol:   "RELIANCE.NS",
		Quantity: 5,
	}); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	resp, err := svc.GetPortfolio(context.Background(), trader.ID)
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}

	if len(resp.Holdings) != 1 {
		t.Fatalf("holdings = %d, want 1", len(resp.Holdings))
	}
	if resp.TotalCost != 500 {
		t.Errorf("total cost = %v, want 500", resp.TotalCost)
	}
	if resp.TotalValue != 500 {
		t.Errorf("total value = %v, want 500", resp.TotalValue)
	}
	if resp.Holdings[0].MarketValue != 500 {
		t.Errorf("market value = %v, want 500", resp.Holdings[0].MarketValue)
	}
}

func TestWatchlist(t *testing.T) {
	svc, db := newTestPortfolioService(t, nil)
	trader := seedTrader(t, db, user.TierPro, 0)
	ctx := context.Background()

	if err := svc.Watch(ctx, trader.ID, "TCS.NS"); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Watching the same symbol twice is a no-op.
	if err := svc.Watch(ctx, trader.ID, "TCS.NS"); err != nil {
		t.Fatalf("repeat Watch: %v", err)
	}

	if err := svc.Watch(ctx, trader.ID, "NOTREAL"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown symbol: expected ErrNotFound, got %v", err)
	}

	resp, err := svc.GetWatchlist(ctx, trader.ID)
	if err != nil {
		t.Fatalf("GetWatchlist: %v", err)
	}
	if len(resp.Symbols) != 1 || resp.Symbols[0].Symbol != "TCS.NS" {
		t.Errorf("watchlist = %+v, want single TCS.NS entry", resp.Symbols)
	}

	if err := svc.Unwatch(ctx, trader.ID, "TCS.NS"); err != nil {
		t.Fatalf("Unwatch: %v", err)
	}
	if err := svc.Unwatch(ctx, trader.ID, "TCS.NS"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("repeat unwatch: expected ErrNotFound, got %v", err)
	}
}
