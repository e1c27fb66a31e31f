package models

import "time"

// PricePoint is one adjusted-close observation for a symbol.
// Prices for a symbol form a date-ascending sequence with no duplicate
// dates; gaps (holidays, missing bars) are expected.
type PricePoint struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"` // split/dividend-adjusted close
}

// PriceTable maps symbols to their date-ascending price series.
// A symbol with no data in the requested range is simply absent.
type PriceTable map[string][]PricePoint

// Symbols returns the symbols present in the table.
func (t PriceTable) Symbols() []string {
	syms := make([]string, 0, len(t))
	for s := range t {
		syms = append(syms, s)
	}
	return syms
}

// MomentumScore is the trailing-return score of one symbol at an as-of
// date. A nil Value means the symbol had insufficient data to score;
// such symbols are excluded from ranking, never ranked with a sentinel.
type MomentumScore struct {
	Symbol string    `json:"symbol"`
	AsOf   time.Time `json:"as_of"`
	Value  *float64  `json:"value"` // fractional return over the lookback window, nil = unscorable
	Price  float64   `json:"price"` // adjusted close at the as-of date, 0 if unavailable
}

// Scored reports whether the symbol received a momentum score.
func (m MomentumScore) Scored() bool { return m.Value != nil }

// ReturnPoint is one daily portfolio return observation.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"` // fractional, e.g. 0.012 = +1.2%
}
