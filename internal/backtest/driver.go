// Package backtest drives a monthly-rebalanced momentum strategy over a
// historical horizon and evaluates the realized return series. The
// rebalance loop is strictly sequential: each event's input is the
// portfolio state the previous event produced.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/momentum/internal/datasource"
	"github.com/seenimoa/momentum/internal/momentum"
	"github.com/seenimoa/momentum/internal/portfolio"
	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

// ErrConfig marks a configuration problem that makes a run refuse to
// start. Data problems never carry this error; they degrade in-run.
var ErrConfig = errors.New("backtest: invalid configuration")

// ════════════════════════════════════════════════════════════════════
// Driver Configuration
// ════════════════════════════════════════════════════════════════════

// Config holds all parameters for a backtest run.
type Config struct {
	TopN           int     // portfolio size (default: 10)
	LookbackMonths int     // momentum window length (default: 12)
	MinCoverage    float64 // required fraction of expected bars (default: 0.8)
	RiskFreeRate   float64 // annual risk-free rate for Sharpe (default: 0.04)
	CommissionPct  float64 // flat cost per position change as fraction (default: 0)

	Policy portfolio.RebalancePolicy // nil means preserve-existing
}

// DefaultConfig returns the standard NIFTY momentum parameters.
func DefaultConfig() Config {
	return Config{
		TopN:           10,
		LookbackMonths: 12,
		MinCoverage:    0.8,
		RiskFreeRate:   0.04,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.LookbackMonths <= 0 {
		c.LookbackMonths = d.LookbackMonths
	}
	if c.MinCoverage <= 0 || c.MinCoverage > 1 {
		c.MinCoverage = d.MinCoverage
	}
	if c.RiskFreeRate <= 0 {
		c.RiskFreeRate = d.RiskFreeRate
	}
	if c.CommissionPct < 0 {
		c.CommissionPct = 0
	}
	return c
}

// ════════════════════════════════════════════════════════════════════
// Result
// ════════════════════════════════════════════════════════════════════

// Result is the full outcome of a run: the last holdings snapshot
// before finalization, the complete tradebook, the per-event log, the
// realized daily return series, and the metrics computed from it.
type Result struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Universe int       `json:"universe_size"`
	TopN     int       `json:"top_n"`

	Holdings  []models.Position    `json:"holdings"`
	Tradebook []models.Trade       `json:"tradebook"`
	Events    []portfolio.Event    `json:"events"`
	Returns   []models.ReturnPoint `json:"daily_returns"`
	Metrics   models.Metrics       `json:"metrics"`
}

// ════════════════════════════════════════════════════════════════════
// Driver
// ════════════════════════════════════════════════════════════════════

// Driver runs backtests against a price provider. It is stateless
// across runs; every Run builds a fresh Portfolio.
type Driver struct {
	provider datasource.PriceProvider
	cfg      Config
	logger   *zap.Logger
}

// NewDriver creates a Driver. A nil logger disables logging.
func NewDriver(provider datasource.PriceProvider, cfg Config, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{provider: provider, cfg: cfg.normalized(), logger: logger}
}

// Run executes the rebalance sequence over the given as-of dates. The
// universe must be non-empty, the dates strictly increasing with at
// least two entries, and TopN positive; anything else refuses to start
// with ErrConfig. Per-symbol data failures degrade and are logged;
// they never abort a started run. Remaining positions are always
// closed at the last as-of date so the tradebook is complete.
func (d *Driver) Run(ctx context.Context, universe []string, dates []time.Time) (*Result, error) {
	if err := validate(universe, dates, d.cfg.TopN); err != nil {
		return nil, err
	}

	params := momentum.Params{LookbackMonths: d.cfg.LookbackMonths, MinCoverage: d.cfg.MinCoverage}
	pf := portfolio.New(portfolio.WithPolicy(d.cfg.Policy), portfolio.WithLogger(d.logger))
	builder := NewReturnsBuilder(d.cfg.CommissionPct)

	var (
		events     []portfolio.Event
		prevEvent  portfolio.Event
		prevDate   time.Time
		lastLookup portfolio.PriceLookup
	)

	for i, asOf := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table := d.fetchWindow(ctx, universe, asOf)
		scores := momentum.ScoreTable(table, universe, asOf, params)
		ranked := momentum.TopN(momentum.Rank(scores), d.cfg.TopN)
		lookup := scoreLookup(scores)

		var ev portfolio.Event
		if i == 0 {
			var err error
			ev, err = pf.Initialize(ranked, asOf)
			if err != nil {
				return nil, err
			}
		} else {
			// The period ending today belongs to the set held since
			// the previous event, charged with that event's turnover.
			builder.AddPeriod(table, pf.Symbols(), prevDate, asOf, prevEvent.Turnover())
			ev = pf.Rebalance(ranked, asOf, lookup)
		}

		d.logger.Info("rebalance applied",
			zap.String("as_of", utils.FormatDate(asOf)),
			zap.Int("ranked", len(ranked)),
			zap.Int("closed", len(ev.Closed)),
			zap.Int("opened", len(ev.Opened)),
			zap.Int("held", pf.NumPositions()))

		events = append(events, ev)
		prevEvent, prevDate, lastLookup = ev, asOf, lookup
	}

	holdings := pf.Holdings()
	last := dates[len(dates)-1]
	pf.CloseAll(last, lastLookup)

	returns := builder.Series()
	result := &Result{
		From:      utils.DateOnly(dates[0]),
		To:        utils.DateOnly(last),
		Universe:  len(universe),
		TopN:      d.cfg.TopN,
		Holdings:  holdings,
		Tradebook: pf.Tradebook(),
		Events:    events,
		Returns:   returns,
		Metrics:   Evaluate(returns, d.cfg.RiskFreeRate),
	}
	return result, nil
}

// fetchWindow pulls the lookback window for one as-of date. A provider
// failure is absorbed as data-unavailable for every symbol; scoring
// then yields no ranked candidates for the date.
func (d *Driver) fetchWindow(ctx context.Context, universe []string, asOf time.Time) models.PriceTable {
	start, _ := utils.LookbackWindow(asOf, d.cfg.LookbackMonths)
	table, err := d.provider.GetPrices(ctx, universe, start, asOf.AddDate(0, 0, 2))
	if err != nil {
		d.logger.Warn("price provider failed, treating all symbols as unavailable",
			zap.String("as_of", utils.FormatDate(asOf)),
			zap.Error(err))
		return models.PriceTable{}
	}
	return table
}

// scoreLookup exposes the as-of prices collected during scoring as a
// PriceLookup for position opens and closes.
func scoreLookup(scores map[string]models.MomentumScore) portfolio.PriceLookup {
	return func(symbol string) (float64, bool) {
		s, ok := scores[symbol]
		if !ok || s.Price <= 0 {
			return 0, false
		}
		return s.Price, true
	}
}

func validate(universe []string, dates []time.Time, topN int) error {
	if len(universe) == 0 {
		return fmt.Errorf("%w: universe is empty", ErrConfig)
	}
	if topN <= 0 {
		return fmt.Errorf("%w: topN must be positive, got %d", ErrConfig, topN)
	}
	if len(dates) < 2 {
		return fmt.Errorf("%w: need at least 2 rebalance dates, got %d", ErrConfig, len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return fmt.Errorf("%w: rebalance dates must be strictly increasing (%s then %s)",
				ErrConfig, utils.FormatDate(dates[i-1]), utils.FormatDate(dates[i]))
		}
	}
	return nil
}
