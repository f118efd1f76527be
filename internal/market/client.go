// StockTrackHub | 2026
// client.go

package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kingmumo/stocktrackhub/internal/config"
)

var ErrQuoteUnavailable = errors.New("quote unavailable")

type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	CurrentPrice  float64   `json:"current_price"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        int64     `json:"volume"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	LastUpdated   time.Time `json:"last_updated"`
}

type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// Client fetches market data from the upstream chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.MarketConfig) *Client {
	return &Client{
		baseURL: cfg.UpstreamURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetchChart(
	ctx context.Context,
	symbol, dataRange, interval string,
) (*chartResponse, error) {
	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?range=%s&interval=%s",
		c.baseURL,
		url.PathEscape(symbol),
		url.QueryEscape(dataRange),
		url.QueryEscape(interval),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stocktrackhub/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"fetch chart %s: upstream status %d: %w",
			symbol,
			resp.StatusCode,
			ErrQuoteUnavailable,
		)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", symbol, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf(
			"fetch chart %s: %s: %w",
			symbol,
			chart.Chart.Error.Description,
			ErrQuoteUnavailable,
		)
	}

	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf(
			"fetch chart %s: empty result: %w",
			symbol,
			ErrQuoteUnavailable,
		)
	}

	return &chart, nil
}

// FetchQuote builds a point-in-time quote from the latest daily bar.
func (c *Client) FetchQuote(
	ctx context.Context,
	symbol string,
) (*Quote, error) {
	chart, err := c.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf(
			"quote %s: no indicator data: %w",
			symbol,
			ErrQuoteUnavailable,
		)
	}

	bars := result.Indicators.Quote[0]
	last := len(bars.Close) - 1
	if last < 0 {
		return nil, fmt.Errorf(
			"quote %s: no bars: %w",
			symbol,
			ErrQuoteUnavailable,
		)
	}

	// Upstreams serve ragged arrays for illiquid symbols.
	if last >= len(bars.Open) || last >= len(bars.High) || last >= len(bars.Low) {
		return nil, fmt.Errorf(
			"quote %s: ragged bar data: %w",
			symbol,
			ErrQuoteUnavailable,
		)
	}

	current := bars.Close[last]
	if result.Meta.RegularMarketPrice > 0 {
		current = result.Meta.RegularMarketPrice
	}

	open := bars.Open[last]
	change := current - open
	changePercent := 0.0
	if open > 0 {
		changePercent = change / open * 100
	}

	var volume int64
	if last < len(bars.Volume) {
		volume = bars.Volume[last]
	}

	return &Quote{
		Symbol:        symbol,
		Name:          DisplayName(symbol),
		CurrentPrice:  current,
		Open:          open,
		High:          bars.High[last],
		Low:           bars.Low[last],
		Volume:        volume,
		Change:        change,
		ChangePercent: changePercent,
		LastUpdated:   time.Now().UTC(),
	}, nil
}

// FetchHistory returns daily candles for the requested range.
func (c *Client) FetchHistory(
	ctx context.Context,
	symbol, dataRange string,
) ([]Candle, error) {
	chart, err := c.fetchChart(ctx, symbol, dataRange, "1d")
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf(
			"history %s: no indicator data: %w",
			symbol,
			ErrQuoteUnavailable,
		)
	}

	bars := result.Indicators.Quote[0]
	candles := make([]Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(bars.Close) {
			break
		}
		candles = append(candles, Candle{
			Timestamp: ts,
			Open:      priceAt(bars.Open, i),
			High:      priceAt(bars.High, i),
			Low:       priceAt(bars.Low, i),
			Close:     bars.Close[i],
			Volume:    volumeAt(bars.Volume, i),
		})
	}

	return candles, nil
}

func priceAt(prices []float64, i int) float64 {
	if i < len(prices) {
		return prices[i]
	}
	return 0
}

func volumeAt(volumes []int64, i int) int64 {
	if i < len(volumes) {
		return volumes[i]
	}
	return 0
}
