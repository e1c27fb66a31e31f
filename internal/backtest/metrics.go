package backtest

import (
	"math"
	"time"

	"github.com/seenimoa/momentum/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Performance Metrics
// ════════════════════════════════════════════════════════════════════

// TradingDaysPerYear is the annualization basis for volatility and
// Sharpe on the NSE calendar.
const TradingDaysPerYear = 252

// Evaluate computes performance metrics over an ordered daily return
// series. Returns are fractions (0.01 = 1%). An empty series yields
// all-zero metrics rather than an error, so a degraded run still
// produces a complete report.
func Evaluate(series []models.ReturnPoint, annualRiskFreeRate float64) models.Metrics {
	if len(series) == 0 {
		return models.Metrics{}
	}

	returns := make([]float64, len(series))
	for i, p := range series {
		returns[i] = p.Return
	}

	m := models.Metrics{
		TotalReturn:      totalReturn(returns),
		MaxDrawdown:      maxDrawdown(returns),
		AnnualVolatility: stddev(returns) * math.Sqrt(TradingDaysPerYear),
	}
	m.CAGR = cagr(m.TotalReturn, series[0].Date, series[len(series)-1].Date)
	m.SharpeRatio = sharpe(returns, annualRiskFreeRate)
	return m
}

// ────────────────────────────────────────────────────────────────────
// Total return and CAGR
// ────────────────────────────────────────────────────────────────────

func totalReturn(returns []float64) float64 {
	cum := 1.0
	for _, r := range returns {
		cum *= 1 + r
	}
	return cum - 1
}

// cagr annualizes a total return over the calendar span of the series.
// A zero or negative span gives 0 rather than an exploding exponent.
func cagr(total float64, from, to time.Time) float64 {
	days := to.Sub(from).Hours() / 24
	if days <= 0 {
		return 0
	}
	base := 1 + total
	if base <= 0 {
		return -1
	}
	return math.Pow(base, 365.25/days) - 1
}

// ────────────────────────────────────────────────────────────────────
// Maximum Drawdown
// ────────────────────────────────────────────────────────────────────

// maxDrawdown walks the cumulative product of (1+r) and reports the
// deepest decline from a running peak, as a non-positive fraction.
func maxDrawdown(returns []float64) float64 {
	cum := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		dd := cum/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// ────────────────────────────────────────────────────────────────────
// Sharpe Ratio (annualized)
// ────────────────────────────────────────────────────────────────────

func sharpe(returns []float64, annualRiskFreeRate float64) float64 {
	dailyRf := math.Pow(1+annualRiskFreeRate, 1.0/TradingDaysPerYear) - 1

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRf
	}

	sd := stddev(excess)
	if sd == 0 {
		return 0
	}
	return mean(excess) / sd * math.Sqrt(TradingDaysPerYear)
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1)) // sample stddev
}
