// StockTrackHub | 2026
// service.go

package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/kingmumo/stocktrackhub/internal/core"
	"github.com/kingmumo/stocktrackhub/internal/market"
	"github.com/kingmumo/stocktrackhub/internal/user"
)

// QuoteProvider supplies current prices for valuation and trading.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*market.Quote, error)
}

type Service struct {
	db     *sqlx.DB
	repo   Repository
	users  user.Repository
	quotes QuoteProvider
	logger *slog.Logger
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	users user.Repository,
	quotes QuoteProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		users:  users,
		quotes: quotes,
		logger: logger,
	}
}

// requirePaidTier gates trading and watchlists behind an active paid
// subscription. The check reads the stored tier rather than the token
// claim so a sweep that just downgraded the user takes effect at once.
func (s *Service) requirePaidTier(
	ctx context.Context,
	userID int64,
) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if u.Tier == user.TierFree {
		return nil, fmt.Errorf(
			"paid subscription required: %w",
			core.ErrForbidden,
		)
	}

	return u, nil
}

// Buy purchases a holding at the current quoted price. The balance
// deduction and the holding insert commit together or not at all.
func (s *Service) Buy(
	ctx context.Context,
	userID int64,
	req BuyRequest,
) (*Holding, error) {
	if _, err := s.requirePaidTier(ctx, userID); err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	holding := &Holding{
		UserID:        userID,
		Symbol:        req.Symbol,
		Quantity:      req.Quantity,
		PurchasePrice: quote.CurrentPrice,
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users := user.NewRepository(tx)
		holdings := NewRepository(tx)

		if err := users.AdjustBalance(ctx, userID, -holding.Cost()); err != nil {
			return err
		}

		return holdings.CreateHolding(ctx, holding)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("holding purchased",
		"user_id", userID,
		"symbol", req.Symbol,
		"quantity", req.Quantity,
		"price", quote.CurrentPrice,
	)

	return holding, nil
}

// Sell liquidates a holding at the current quoted price and credits the
// proceeds back to the user's balance.
func (s *Service) Sell(
	ctx context.Context,
	userID, holdingID int64,
) (float64, error) {
	if _, err := s.requirePaidTier(ctx, userID); err != nil {
		return 0, err
	}

	holding, err := s.repo.GetHolding(ctx, holdingID)
	if err != nil {
		return 0, err
	}

	if holding.UserID != userID {
		return 0, fmt.Errorf("sell holding: %w", core.ErrForbidden)
	}

	quote, err := s.quotes.GetQuote(ctx, holding.Symbol)
	if err != nil {
		return 0, err
	}

	proceeds := float64(holding.Quantity) * quote.CurrentPrice

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users := user.NewRepository(tx)
		holdings := NewRepository(tx)

		if err := holdings.DeleteHolding(ctx, holdingID, userID); err != nil {
			return err
		}

		return users.AdjustBalance(ctx, userID, proceeds)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("holding sold",
		"user_id", userID,
		"holding_id", holdingID,
		"symbol", holding.Symbol,
		"proceeds", proceeds,
	)

	return proceeds, nil
}

// GetPortfolio values every holding at the current quote. Symbols whose
// quote is unavailable fall back to purchase price for the total.
func (s *Service) GetPortfolio(
	ctx context.Context,
	userID int64,
) (*PortfolioResponse, error) {
	if _, err := s.requirePaidTier(ctx, userID); err != nil {
		return nil, err
	}

	holdings, err := s.repo.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &PortfolioResponse{
		Holdings: make([]HoldingResponse, 0, len(holdings)),
	}

	for i := range holdings {
		h := &holdings[i]

		item := HoldingResponse{
			ID:            h.ID,
			Symbol:        h.Symbol,
			Name:          market.DisplayName(h.Symbol),
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			PurchaseDate:  h.PurchaseDate,
		}

		value := h.Cost()
		if quote, qErr := s.quotes.GetQuote(ctx, h.Symbol); qErr == nil {
			item.CurrentPrice = quote.CurrentPrice
			value = float64(h.Quantity) * quote.CurrentPrice
			item.MarketValue = value
			item.GainLoss = value - h.Cost()
		}

		resp.TotalCost += h.Cost()
		resp.TotalValue += value
		resp.Holdings = append(resp.Holdings, item)
	}

	return resp, nil
}

func (s *Service) Watch(
	ctx context.Context,
	userID int64,
	symbol string,
) error {
	if _, err := s.requirePaidTier(ctx, userID); err != nil {
		return err
	}

	if !market.KnownSymbol(symbol) {
		return fmt.Errorf(
			"watch: unknown symbol %q: %w",
			symbol,
			core.ErrNotFound,
		)
	}

	return s.repo.AddToWatchlist(ctx, userID, symbol)
}

func (s *Service) Unwatch(
	ctx context.Context,
	userID int64,
	symbol string,
) error {
	if _, err := s.requirePaidTier(ctx, userID); err != nil {
		return err
	}

	return s.repo.RemoveFromWatchlist(ctx, userID, symbol)
}

func (s *Service) GetWatchlist(
	ctx context.Context,
	userID int64,
) (*WatchlistResponse, error) {
	if _, err := s.requirePaidTier(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListWatchlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &WatchlistResponse{
		Symbols: make([]WatchlistEntryResponse, 0, len(entries)),
	}

	for _, entry := range entries {
		resp.Symbols = append(resp.Symbols, WatchlistEntryResponse{
			Symbol:  entry.Symbol,
			Name:    market.DisplayName(entry.Symbol),
			AddedAt: entry.AddedAt,
		})
	}

	return resp, nil
}
