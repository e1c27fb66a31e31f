// Package portfolio implements the rebalancing state machine for a
// ranked momentum strategy. A Portfolio is a per-run value: its
// held-symbol map and tradebook belong to the instance, so two
// concurrent backtests never observe each other's state.
package portfolio

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

// PriceLookup resolves a symbol's price at the current rebalance date.
// A false return means the price could not be resolved.
type PriceLookup func(symbol string) (float64, bool)

// Event records what one rebalance did, in deterministic symbol order.
type Event struct {
	AsOf   time.Time `json:"as_of"`
	Closed []string  `json:"closed"`
	Opened []string  `json:"opened"`
}

// Turnover is the number of position changes the event made.
func (e Event) Turnover() int {
	return len(e.Closed) + len(e.Opened)
}

// ════════════════════════════════════════════════════════════════════
// Portfolio
// ════════════════════════════════════════════════════════════════════

// Portfolio tracks open positions and the append-only tradebook of
// closed round trips. It is not safe for concurrent use; a backtest
// run has exactly one sequential writer.
type Portfolio struct {
	positions map[string]models.Position
	tradebook []models.Trade
	policy    RebalancePolicy
	logger    *zap.Logger
}

// Option configures a Portfolio.
type Option func(*Portfolio)

// WithPolicy overrides the default preserve-existing rebalance policy.
func WithPolicy(p RebalancePolicy) Option {
	return func(pf *Portfolio) {
		if p != nil {
			pf.policy = p
		}
	}
}

// WithLogger attaches a logger for degraded-data warnings.
func WithLogger(l *zap.Logger) Option {
	return func(pf *Portfolio) {
		if l != nil {
			pf.logger = l
		}
	}
}

// New creates an empty Portfolio with the preserve-existing policy.
func New(opts ...Option) *Portfolio {
	pf := &Portfolio{
		positions: make(map[string]models.Position),
		policy:    PreserveExisting{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(pf)
	}
	return pf
}

// Initialize opens one position per ranked symbol at its as-of price.
// The Portfolio must be empty; initializing twice is a caller bug.
func (pf *Portfolio) Initialize(ranked []models.MomentumScore, asOf time.Time) (Event, error) {
	if len(pf.positions) > 0 {
		return Event{}, fmt.Errorf("portfolio: initialize on non-empty portfolio (%d positions held)", len(pf.positions))
	}

	ev := Event{AsOf: utils.DateOnly(asOf)}
	for _, s := range ranked {
		pf.open(s.Symbol, s.Price, asOf)
		ev.Opened = append(ev.Opened, s.Symbol)
	}
	sort.Strings(ev.Opened)
	return ev, nil
}

// Rebalance applies the policy's plan for the new ranked list: dropped
// symbols are closed at the as-of price, new entrants are opened, and
// symbols held through the event keep their original entry price and
// quantity. A missing close price degrades to a sentinel exit price of
// 0 with a warning; it never blocks the event.
func (pf *Portfolio) Rebalance(ranked []models.MomentumScore, asOf time.Time, prices PriceLookup) Event {
	toClose, toOpen := pf.policy.Plan(pf.positions, ranked)

	ev := Event{AsOf: utils.DateOnly(asOf), Closed: toClose, Opened: toOpen}
	for _, symbol := range toClose {
		pf.close(symbol, asOf, prices)
	}

	openPrice := func(symbol string) float64 {
		for _, s := range ranked {
			if s.Symbol == symbol {
				return s.Price
			}
		}
		if p, ok := prices(symbol); ok {
			return p
		}
		return 0
	}
	for _, symbol := range toOpen {
		pf.open(symbol, openPrice(symbol), asOf)
	}
	return ev
}

// CloseAll closes every remaining position at the as-of price, using
// the same degraded-close behavior as a rebalance. It completes the
// tradebook at the end of a backtest horizon.
func (pf *Portfolio) CloseAll(asOf time.Time, prices PriceLookup) Event {
	symbols := pf.Symbols()
	ev := Event{AsOf: utils.DateOnly(asOf), Closed: symbols}
	for _, symbol := range symbols {
		pf.close(symbol, asOf, prices)
	}
	return ev
}

func (pf *Portfolio) open(symbol string, price float64, asOf time.Time) {
	if price <= 0 {
		pf.logger.Warn("opening position without a resolvable price",
			zap.String("symbol", symbol),
			zap.String("as_of", utils.FormatDate(asOf)))
	}
	pf.positions[symbol] = models.Position{
		Symbol:     symbol,
		EntryPrice: price,
		EntryDate:  utils.DateOnly(asOf),
		Quantity:   1,
	}
}

func (pf *Portfolio) close(symbol string, asOf time.Time, prices PriceLookup) {
	pos, ok := pf.positions[symbol]
	if !ok {
		return
	}

	exitPrice, found := prices(symbol)
	if !found {
		// Sentinel exit so the tradebook stays complete; PnLPercent
		// reports 0 for such trades.
		exitPrice = 0
		pf.logger.Warn("close price unavailable, recording sentinel exit",
			zap.String("symbol", symbol),
			zap.String("as_of", utils.FormatDate(asOf)))
	}

	pf.tradebook = append(pf.tradebook, models.Trade{
		Symbol:     symbol,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		EntryDate:  pos.EntryDate,
		ExitDate:   utils.DateOnly(asOf),
		Quantity:   pos.Quantity,
	})
	delete(pf.positions, symbol)
}

// ════════════════════════════════════════════════════════════════════
// Accessors
// ════════════════════════════════════════════════════════════════════

// Held reports whether the symbol is currently an open position.
func (pf *Portfolio) Held(symbol string) bool {
	_, ok := pf.positions[symbol]
	return ok
}

// Position returns the open position for a symbol, if held.
func (pf *Portfolio) Position(symbol string) (models.Position, bool) {
	pos, ok := pf.positions[symbol]
	return pos, ok
}

// Symbols returns the held symbols in ascending order.
func (pf *Portfolio) Symbols() []string {
	symbols := make([]string, 0, len(pf.positions))
	for s := range pf.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Holdings returns the open positions ordered by symbol.
func (pf *Portfolio) Holdings() []models.Position {
	symbols := pf.Symbols()
	holdings := make([]models.Position, 0, len(symbols))
	for _, s := range symbols {
		holdings = append(holdings, pf.positions[s])
	}
	return holdings
}

// Tradebook returns a copy of the closed-trade ledger in append order.
func (pf *Portfolio) Tradebook() []models.Trade {
	book := make([]models.Trade, len(pf.tradebook))
	copy(book, pf.tradebook)
	return book
}

// NumPositions returns the open position count.
func (pf *Portfolio) NumPositions() int {
	return len(pf.positions)
}
