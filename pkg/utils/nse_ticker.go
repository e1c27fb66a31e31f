package utils

import (
	"strings"
)

// Common aliases seen in universe files and user input, mapped to the
// canonical NSE symbol.
var tickerAliases = map[string]string{
	"RIL":           "RELIANCE",
	"INFOSYS":       "INFY",
	"HDFC BANK":     "HDFCBANK",
	"ICICI BANK":    "ICICIBANK",
	"SBI":           "SBIN",
	"AIRTEL":        "BHARTIARTL",
	"L&T":           "LT",
	"KOTAK":         "KOTAKBANK",
	"AXIS BANK":     "AXISBANK",
	"ASIAN PAINTS":  "ASIANPAINT",
	"NESTLE":        "NESTLEIND",
	"ULTRATECH":     "ULTRACEMCO",
	"TECH MAHINDRA": "TECHM",
	"HUL":           "HINDUNILVR",
}

// Index tickers in Yahoo Finance notation.
var indexTickers = map[string]string{
	"NIFTY 50":   "^NSEI",
	"NIFTY50":    "^NSEI",
	"NIFTY BANK": "^NSEBANK",
	"SENSEX":     "^BSESN",
}

// NormalizeTicker trims, uppercases, and resolves common aliases to the
// canonical NSE symbol.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ToYFinanceTicker converts an NSE symbol to Yahoo Finance format by
// appending .NS. Index names map to their Yahoo symbols (^NSEI etc.).
// Symbols that already carry an exchange suffix are returned unchanged.
func ToYFinanceTicker(ticker string) string {
	ticker = NormalizeTicker(ticker)

	if idx, ok := indexTickers[ticker]; ok {
		return idx
	}
	if strings.HasPrefix(ticker, "^") ||
		strings.HasSuffix(ticker, ".NS") || strings.HasSuffix(ticker, ".BO") {
		return ticker
	}
	return ticker + ".NS"
}

// FromYFinanceTicker strips the .NS or .BO suffix to get the NSE/BSE symbol.
func FromYFinanceTicker(yfTicker string) string {
	yfTicker = strings.TrimSuffix(yfTicker, ".NS")
	yfTicker = strings.TrimSuffix(yfTicker, ".BO")
	return yfTicker
}

// IsIndex reports whether the ticker refers to an index rather than a stock.
func IsIndex(ticker string) bool {
	t := strings.TrimSpace(strings.ToUpper(ticker))
	if strings.HasPrefix(t, "^") {
		return true
	}
	_, ok := indexTickers[t]
	return ok
}
