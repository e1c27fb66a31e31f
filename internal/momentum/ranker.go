// Package momentum scores equities by trailing price momentum and ranks
// them for portfolio selection. The scoring convention is "12-minus-1":
// the trailing return over the lookback window that ends at the last
// trading day of the month before the as-of date, so the most recent
// month is excluded from the signal.
package momentum

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/momentum/internal/datasource"
	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Scoring Parameters
// ════════════════════════════════════════════════════════════════════

// BarsPerMonth is the expected number of daily closes per calendar month
// on the NSE, used to judge whether a symbol has enough history.
const BarsPerMonth = 20

// ErrInsufficientHistory marks a symbol whose price series does not cover
// enough of the lookback window to produce a trustworthy score.
var ErrInsufficientHistory = errors.New("momentum: insufficient price history")

// Params controls how momentum scores are computed.
type Params struct {
	LookbackMonths int     // trailing window length (default: 12)
	MinCoverage    float64 // fraction of expected bars required (default: 0.8)
}

// DefaultParams returns the standard 12-month / 80%-coverage parameters.
func DefaultParams() Params {
	return Params{LookbackMonths: 12, MinCoverage: 0.8}
}

func (p Params) normalized() Params {
	if p.LookbackMonths <= 0 {
		p.LookbackMonths = 12
	}
	if p.MinCoverage <= 0 || p.MinCoverage > 1 {
		p.MinCoverage = 0.8
	}
	return p
}

// ════════════════════════════════════════════════════════════════════
// Pure Scoring — operates on already-fetched price tables
// ════════════════════════════════════════════════════════════════════

// ScoreTable computes a momentum score for every symbol in the universe
// from the given price table. Symbols with insufficient history get a
// nil Value; they are never assigned a sentinel score. The same table
// and as-of date always produce the same scores.
func ScoreTable(table models.PriceTable, universe []string, asOf time.Time, p Params) map[string]models.MomentumScore {
	p = p.normalized()
	start, end := utils.LookbackWindow(asOf, p.LookbackMonths)

	scores := make(map[string]models.MomentumScore, len(universe))
	for _, symbol := range universe {
		scores[symbol] = scoreSeries(symbol, table[symbol], asOf, start, end, p)
	}
	return scores
}

func scoreSeries(symbol string, series []models.PricePoint, asOf, start, end time.Time, p Params) models.MomentumScore {
	score := models.MomentumScore{Symbol: symbol, AsOf: utils.DateOnly(asOf)}

	// The as-of price is recorded whenever available, even for unscored
	// symbols: rebalancing needs it to value positions that fall out of
	// the ranking.
	if price, ok := PriceOn(series, asOf); ok {
		score.Price = price
	}

	window := sliceWindow(series, start, end)
	expected := p.LookbackMonths * BarsPerMonth
	if float64(len(window)) < p.MinCoverage*float64(expected) {
		return score
	}

	startPrice := window[0].Close
	endPrice, ok := PriceOn(series, end)
	if !ok || startPrice <= 0 {
		return score
	}

	v := endPrice/startPrice - 1
	score.Value = &v
	return score
}

// sliceWindow returns the points of a date-ascending series that fall in
// [start, end] inclusive.
func sliceWindow(series []models.PricePoint, start, end time.Time) []models.PricePoint {
	lo := sort.Search(len(series), func(i int) bool {
		return !series[i].Date.Before(start)
	})
	hi := sort.Search(len(series), func(i int) bool {
		return series[i].Date.After(end)
	})
	if lo >= hi {
		return nil
	}
	return series[lo:hi]
}

// PriceOn looks up the close on the given date in a date-ascending
// series. Exchange holidays leave gaps, so a miss retries the next
// calendar day, exactly once.
func PriceOn(series []models.PricePoint, date time.Time) (float64, bool) {
	if price, ok := priceExactly(series, date); ok {
		return price, true
	}
	return priceExactly(series, date.AddDate(0, 0, 1))
}

func priceExactly(series []models.PricePoint, date time.Time) (float64, bool) {
	d := utils.DateOnly(date)
	i := sort.Search(len(series), func(i int) bool {
		return !series[i].Date.Before(d)
	})
	if i < len(series) && utils.SameDate(series[i].Date, d) {
		return series[i].Close, true
	}
	return 0, false
}

// ════════════════════════════════════════════════════════════════════
// Ranking
// ════════════════════════════════════════════════════════════════════

// Rank orders scored symbols by momentum, highest first. Unscored
// symbols are omitted entirely. Ties break by symbol ascending so the
// ordering is deterministic.
func Rank(scores map[string]models.MomentumScore) []models.MomentumScore {
	ranked := make([]models.MomentumScore, 0, len(scores))
	for _, s := range scores {
		if s.Scored() {
			ranked = append(ranked, s)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if *ranked[i].Value != *ranked[j].Value {
			return *ranked[i].Value > *ranked[j].Value
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	return ranked
}

// TopN returns the first n entries of a ranked slice, or all of them
// when fewer are scored.
func TopN(ranked []models.MomentumScore, n int) []models.MomentumScore {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// ════════════════════════════════════════════════════════════════════
// Ranker — fetches prices and scores in one step
// ════════════════════════════════════════════════════════════════════

// Ranker couples a price provider with scoring parameters. It is what
// the CLI and API use when they only need a ranking for a single date;
// the backtest driver fetches tables itself so it can reuse them for
// position valuation.
type Ranker struct {
	provider datasource.PriceProvider
	params   Params
	logger   *zap.Logger
}

// NewRanker creates a Ranker. A nil logger disables logging.
func NewRanker(provider datasource.PriceProvider, params Params, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{provider: provider, params: params.normalized(), logger: logger}
}

// Score fetches prices for the universe and computes momentum scores as
// of the given date.
func (r *Ranker) Score(ctx context.Context, universe []string, asOf time.Time) (map[string]models.MomentumScore, error) {
	table, err := r.FetchWindow(ctx, universe, asOf)
	if err != nil {
		return nil, err
	}

	scores := ScoreTable(table, universe, asOf, r.params)

	unscored := 0
	for _, s := range scores {
		if !s.Scored() {
			unscored++
		}
	}
	if unscored > 0 {
		r.logger.Warn("symbols without sufficient history excluded from ranking",
			zap.Int("unscored", unscored),
			zap.Int("universe", len(universe)),
			zap.String("as_of", utils.FormatDate(asOf)))
	}
	return scores, nil
}

// RankAt fetches, scores, and ranks in one call.
func (r *Ranker) RankAt(ctx context.Context, universe []string, asOf time.Time) ([]models.MomentumScore, error) {
	scores, err := r.Score(ctx, universe, asOf)
	if err != nil {
		return nil, err
	}
	return Rank(scores), nil
}

// FetchWindow retrieves daily closes covering the lookback window for
// an as-of date. The fetch extends two days past asOf so the as-of
// close itself is included even around weekends.
func (r *Ranker) FetchWindow(ctx context.Context, universe []string, asOf time.Time) (models.PriceTable, error) {
	start, _ := utils.LookbackWindow(asOf, r.params.LookbackMonths)
	return r.provider.GetPrices(ctx, universe, start, asOf.AddDate(0, 0, 2))
}

// Params returns the scoring parameters the Ranker was built with.
func (r *Ranker) Params() Params {
	return r.params
}
