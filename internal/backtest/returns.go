package backtest

import (
	"sort"
	"time"

	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Daily Return Series
// ════════════════════════════════════════════════════════════════════

// ReturnsBuilder accumulates the strategy's daily return series across
// holding periods. Within a period the portfolio return for a day is
// the equal-weighted mean of the held symbols' close-to-close returns.
// Periods are appended in order, so the finished series spans the whole
// backtest horizon.
type ReturnsBuilder struct {
	commissionPct float64
	series        []models.ReturnPoint
}

// NewReturnsBuilder creates a builder. commissionPct is the flat
// per-transaction cost as a fraction; it is charged against the first
// daily return of each period, scaled by that period's turnover count.
// Zero disables cost modeling.
func NewReturnsBuilder(commissionPct float64) *ReturnsBuilder {
	if commissionPct < 0 {
		commissionPct = 0
	}
	return &ReturnsBuilder{commissionPct: commissionPct}
}

// AddPeriod appends the daily returns of one holding period. The period
// covers trading days after start up to and including end; held lists
// the symbols owned throughout it, and turnover is the number of
// position changes the rebalance that opened the period made. Symbols
// missing from the table simply contribute nothing.
func (b *ReturnsBuilder) AddPeriod(table models.PriceTable, held []string, start, end time.Time, turnover int) {
	type daySum struct {
		sum   float64
		count int
	}
	byDate := make(map[string]daySum)

	for _, symbol := range held {
		for date, r := range symbolReturns(table[symbol], start, end) {
			agg := byDate[date]
			agg.sum += r
			agg.count++
			byDate[date] = agg
		}
	}
	if len(byDate) == 0 {
		return
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for i, d := range dates {
		agg := byDate[d]
		r := agg.sum / float64(agg.count)
		if i == 0 {
			r -= b.commissionPct * float64(turnover)
		}
		day, err := utils.ParseDateIST(d)
		if err != nil {
			continue
		}
		b.series = append(b.series, models.ReturnPoint{Date: day, Return: r})
	}
}

// Series returns the accumulated return series in chronological order.
func (b *ReturnsBuilder) Series() []models.ReturnPoint {
	out := make([]models.ReturnPoint, len(b.series))
	copy(out, b.series)
	return out
}

// symbolReturns computes close-to-close returns for the trading days in
// (start, end], keyed by formatted date. The close at or before start
// is the base for the period's first return; without one the first
// in-period close becomes the base instead.
func symbolReturns(series []models.PricePoint, start, end time.Time) map[string]float64 {
	if len(series) == 0 {
		return nil
	}

	first := sort.Search(len(series), func(i int) bool {
		return series[i].Date.After(start)
	})
	prev := 0.0
	if first > 0 {
		prev = series[first-1].Close
	}

	returns := make(map[string]float64)
	for i := first; i < len(series) && !series[i].Date.After(end); i++ {
		p := series[i]
		if prev > 0 && p.Close > 0 {
			returns[utils.FormatDate(p.Date)] = p.Close/prev - 1
		}
		prev = p.Close
	}
	return returns
}
