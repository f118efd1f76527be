// StockTrackHub | 2026
// service.go

package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kingmumo/stocktrackhub/internal/config"
	"github.com/kingmumo/stocktrackhub/internal/core"
)

type Service struct {
	client *Client
	cache  QuoteCache
	cfg    config.MarketConfig
	logger *slog.Logger
}

func NewService(
	client *Client,
	cache QuoteCache,
	cfg config.MarketConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		client: client,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) GetQuote(
	ctx context.Context,
	symbol string,
) (*Quote, error) {
	if !KnownSymbol(symbol) {
		return nil, fmt.Errorf(
			"quote: unknown symbol %q: %w",
			symbol,
			core.ErrNotFound,
		)
	}

	if cached, ok := s.cache.GetQuote(ctx, symbol); ok {
		return cached, nil
	}

	quote, err := s.client.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s.cache.SetQuote(ctx, symbol, quote, s.cfg.QuoteTTL)

	return quote, nil
}

// GetQuotes fetches many symbols best-effort. Symbols whose upstream
// fetch fails are simply absent from the result; a partially working
// upstream should not blank the whole dashboard.
func (s *Service) GetQuotes(
	ctx context.Context,
	symbols []string,
) []Quote {
	quotes := make([]Quote, 0, len(symbols))

	for _, symbol := range symbols {
		quote, err := s.GetQuote(ctx, symbol)
		if err != nil {
			s.logger.Warn("quote fetch failed",
				"symbol", symbol,
				"error", err,
			)
			continue
		}
		quotes = append(quotes, *quote)
	}

	return quotes
}

func (s *Service) GetHistory(
	ctx context.Context,
	symbol, dataRange string,
) ([]Candle, error) {
	if !KnownSymbol(symbol) {
		return nil, fmt.Errorf(
			"history: unknown symbol %q: %w",
			symbol,
			core.ErrNotFound,
		)
	}

	if !validRange(dataRange) {
		return nil, fmt.Errorf(
			"history: invalid range %q: %w",
			dataRange,
			core.ErrInvalidInput,
		)
	}

	cacheKey := symbol + ":" + dataRange
	if cached, ok := s.cache.GetHistory(ctx, cacheKey); ok {
		return cached, nil
	}

	candles, err := s.client.FetchHistory(ctx, symbol, dataRange)
	if err != nil {
		return nil, err
	}

	s.cache.SetHistory(ctx, cacheKey, candles, s.cfg.HistoryTTL)

	return candles, nil
}

func (s *Service) Search(query string) []Asset {
	return SearchAssets(query)
}

var allowedRanges = map[string]struct{}{
	"1d":  {},
	"5d":  {},
	"1mo": {},
	"3mo": {},
	"6mo": {},
	"1y":  {},
	"2y":  {},
	"5y":  {},
	"max": {},
}

func validRange(dataRange string) bool {
	_, ok := allowedRanges[dataRange]
	return ok
}
