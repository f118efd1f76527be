// StockTrackHub | 2026
// service_test.go

package market

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kingmumo/stocktrackhub/internal/config"
	"github.com/kingmumo/stocktrackhub/internal/core"
)

const chartBody = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "RELIANCE.NS", "regularMarketPrice": 2950.5},
			"timestamp": [1756684800, 1756771200],
			"indicators": {
				"quote": [{
					"open": [2900.0, 2920.0],
					"high": [2960.0, 2955.0],
					"low": [2890.0, 2910.0],
					"close": [2940.0, 2948.0],
					"volume": [1200000, 980000]
				}]
			}
		}],
		"error": null
	}
}`

const chartErrorBody = `{
	"chart": {
		"result": [],
		"error": {"code": "Not Found", "description": "No data found"}
	}
}`

// Illiquid symbols come back with a close series but empty open/high/low.
const chartRaggedBody = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "RELIANCE.NS", "regularMarketPrice": 2950.5},
			"timestamp": [1756771200],
			"indicators": {
				"quote": [{
					"open": [],
					"high": [],
					"low": [],
					"close": [2948.0],
					"volume": []
				}]
			}
		}],
		"error": null
	}
}`

func newTestUpstream(
	t *testing.T,
	status int,
	body string,
) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(status)
			fmt.Fprint(w, body)
		},
	))
	t.Cleanup(server.Close)

	return server, &hits
}

func newTestMarketService(
	t *testing.T,
	upstreamURL string,
) *Service {
	t.Helper()

	cfg := config.MarketConfig{
		UpstreamURL:    upstreamURL,
		RequestTimeout: 5 * time.Second,
		QuoteTTL:       time.Minute,
		HistoryTTL:     5 * time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(NewClient(cfg), NewMemoryCache(), cfg, logger)
}

func TestGetQuote(t *testing.T) {
	server, hits := newTestUpstream(t, http.StatusOK, chartBody)
	svc := newTestMarketService(t, server.URL)

	quote, err := svc.GetQuote(context.Background(), "RELIANCE.NS")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	if quote.CurrentPrice != 2950.5 {
		t.Errorf("current price = %v, want 2950.5 (meta price preferred)", quote.CurrentPrice)
	}
	if quote.Open != 2920.0 {
		t.Errorf("open = %v, want 2920.0 (last bar)", quote.Open)
	}
	if quote.Volume != 980000 {
		t.Errorf("volume = %v, want 980000", quote.Volume)
	}
	wantChange := 2950.5 - 2920.0
	if quote.Change != wantChange {
		t.Errorf("change = %v, want %v", quote.Change, wantChange)
	}
	if quote.Name != "Reliance Industries" {
		t.Errorf("name = %q, want catalog display name", quote.Name)
	}

	// Second call is served from cache without touching the upstream.
	if _, err := svc.GetQuote(context.Background(), "RELIANCE.NS"); err != nil {
		t.Fatalf("cached GetQuote: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1", hits.Load())
	}
}

func TestGetQuoteUnknownSymbol(t *testing.T) {
	server, hits := newTestUpstream(t, http.StatusOK, chartBody)
	svc := newTestMarketService(t, server.URL)

	_, err := svc.GetQuote(context.Background(), "NOTREAL")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("unknown symbol reached the upstream %d times", hits.Load())
	}
}

func TestGetQuoteUpstreamFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"upstream 500", http.StatusInternalServerError, "boom"},
		{"chart error payload", http.StatusOK, chartErrorBody},
		{"ragged bar arrays", http.StatusOK, chartRaggedBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestUpstream(t, tt.status, tt.body)
			svc := newTestMarketService(t, server.URL)

			_, err := svc.GetQuote(context.Background(), "RELIANCE.NS")
			if !errors.Is(err, ErrQuoteUnavailable) {
				t.Errorf("expected ErrQuoteUnavailable, got %v", err)
			}
		})
	}
}

func TestGetQuotesBestEffort(t *testing.T) {
	server, _ := newTestUpstream(t, http.StatusOK, chartBody)
	svc := newTestMarketService(t, server.URL)

	// Unknown symbols are skipped, not fatal.
	quotes := svc.GetQuotes(context.Background(), []string{
		"RELIANCE.NS", "NOTREAL", "TCS.NS",
	})

	if len(quotes) != 2 {
		t.Fatalf("quotes = %d, want 2", len(quotes))
	}
	if quotes[0].Symbol != "RELIANCE.NS" || quotes[1].Symbol != "TCS.NS" {
		t.Errorf("symbols = [%s %s], want [RELIANCE.NS TCS.NS]",
			quotes[0].Symbol, quotes[1].Symbol)
	}
}

func TestGetHistory(t *testing.T) {
	server, hits := newTestUpstream(t, http.StatusOK, chartBody)
	svc := newTestMarketService(t, server.URL)

	candles, err := svc.GetHistory(context.Background(), "RELIANCE.NS", "1mo")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}

	if len(candles) != 2 {
		t.Fatalf("candles = %d, want 2", len(candles))
	}
	if candles[0].Timestamp != 1756684800 || candles[0].Close != 2940.0 {
		t.Errorf("first candle = %+v, want ts 1756684800 close 2940", candles[0])
	}

	// Cached per symbol and range.
	if _, err := svc.GetHistory(context.Background(), "RELIANCE.NS", "1mo"); err != nil {
		t.Fatalf("cached GetHistory: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1", hits.Load())
	}

	// A different range misses the cache.
	if _, err := svc.GetHistory(context.Background(), "RELIANCE.NS", "1y"); err != nil {
		t.Fatalf("GetHistory 1y: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("upstream hits = %d, want 2", hits.Load())
	}
}

func TestGetHistoryRaggedBars(t *testing.T) {
	server, _ := newTestUpstream(t, http.StatusOK, chartRaggedBody)
	svc := newTestMarketService(t, server.URL)

	candles, err := svc.GetHistory(context.Background(), "RELIANCE.NS", "1mo")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}

	if len(candles) != 1 {
		t.Fatalf("candles = %d, want 1", len(candles))
	}
	if candles[0].Close != 2948.0 {
		t.Errorf("close = %v, want 2948", candles[0].Close)
	}
	if candles[0].Open != 0 || candles[0].High != 0 || candles[0].Low != 0 {
		t.Errorf("missing bars should zero-fill, got %+v", candles[0])
	}
}

func TestGetHistoryInvalidRange(t *testing.T) {
	server, _ := newTestUpstream(t, http.StatusOK, chartBody)
	svc := newTestMarketService(t, server.URL)

	_, err := svc.GetHistory(context.Background(), "RELIANCE.NS", "7d")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	quote := &Quote{Symbol: "TCS.NS", CurrentPrice: 4100}
	cache.SetQuote(ctx, "TCS.NS", quote, 50*time.Millisecond)

	if got, ok := cache.GetQuote(ctx, "TCS.NS"); !ok || got.CurrentPrice != 4100 {
		t.Fatalf("GetQuote = (%v, %v), want cached quote", got, ok)
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := cache.GetQuote(ctx, "TCS.NS"); ok {
		t.Error("expected entry to expire")
	}
}
