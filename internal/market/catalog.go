// StockTrackHub | 2026
// catalog.go

package market

import (
	"sort"
	"strings"
)

// PopularAssets is the curated NSE and forex watch universe. Symbols are
// upstream chart identifiers.
var PopularAssets = map[string]string{
	"RELIANCE.NS":   "Reliance Industries",
	"TCS.NS":        "Tata Consultancy Services",
	"INFY.NS":       "Infosys",
	"HDFC.NS":       "HDFC Ltd",
	"ICICIBANK.NS":  "ICICI Bank",
	"HDFCBANK.NS":   "HDFC Bank",
	"SBIN.NS":       "State Bank of India",
	"BHARTIARTL.NS": "Bharti Airtel",
	"ITC.NS":        "ITC Ltd",
	"KOTAKBANK.NS":  "Kotak Mahindra Bank",
	"LT.NS":         "Larsen & Toubro",
	"AXISBANK.NS":   "Axis Bank",
	"MARUTI.NS":     "Maruti Suzuki",
	"SUNPHARMA.NS":  "Sun Pharmaceutical",
	"TITAN.NS":      "Titan Company",
	"WIPRO.NS":      "Wipro",
	"NESTLEIND.NS":  "Nestle India",
	"HCLTECH.NS":    "HCL Technologies",
	"BAJFINANCE.NS": "Bajaj Finance",
	"ULTRACEMCO.NS": "UltraTech Cement",
	"EURUSD=X":      "EUR/USD",
	"GBPUSD=X":      "GBP/USD",
	"USDJPY=X":      "USD/JPY",
	"USDINR=X":      "USD/INR",
}

type Asset struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// DisplayName resolves a symbol to its catalog name, falling back to a
// cleaned-up form of the symbol itself.
func DisplayName(symbol string) string {
	if name, ok := PopularAssets[symbol]; ok {
		return name
	}
	name := strings.TrimSuffix(symbol, ".NS")
	return strings.TrimSuffix(name, "=X")
}

func ListAssets() []Asset {
	assets := make([]Asset, 0, len(PopularAssets))
	for symbol, name := range PopularAssets {
		assets = append(assets, Asset{Symbol: symbol, Name: name})
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Symbol < assets[j].Symbol
	})

	return assets
}

// SearchAssets filters the catalog by case-insensitive substring match on
// symbol or name.
func SearchAssets(query string) []Asset {
	if query == "" {
		return ListAssets()
	}

	q := strings.ToLower(query)
	var matches []Asset

	for _, asset := range ListAssets() {
		if strings.Contains(strings.ToLower(asset.Symbol), q) ||
			strings.Contains(strings.ToLower(asset.Name), q) {
			matches = append(matches, asset)
		}
	}

	return matches
}

// KnownSymbol reports whether the symbol belongs to the curated catalog.
func KnownSymbol(symbol string) bool {
	_, ok := PopularAssets[symbol]
	return ok
}
