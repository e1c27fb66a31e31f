package models

import "time"

// ════════════════════════════════════════════════════════════════════
// Portfolio Primitives
// ════════════════════════════════════════════════════════════════════

// Position is an open holding. Entry price is never re-based while the
// position stays held across rebalances.
type Position struct {
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	EntryDate  time.Time `json:"entry_date"`
	Quantity   float64   `json:"quantity"`
}

// Trade is one closed round trip. Trades are immutable once appended to
// a tradebook.
type Trade struct {
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	Quantity   float64   `json:"quantity"`
}

// PnLPercent returns the round-trip return in percent. A non-positive
// entry price means the position was opened without a resolvable price,
// so no meaningful return exists and 0 is reported.
func (t Trade) PnLPercent() float64 {
	if t.EntryPrice <= 0 {
		return 0
	}
	return (t.ExitPrice - t.EntryPrice) / t.EntryPrice * 100
}

// PnL returns the absolute profit or loss in price terms.
func (t Trade) PnL() float64 {
	return (t.ExitPrice - t.EntryPrice) * t.Quantity
}

// HoldingDays returns the holding period length in calendar days.
func (t Trade) HoldingDays() float64 {
	return t.ExitDate.Sub(t.EntryDate).Hours() / 24
}
