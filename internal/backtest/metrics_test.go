package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, utils.IST)
}

func returnSeries(start time.Time, returns ...float64) []models.ReturnPoint {
	series := make([]models.ReturnPoint, len(returns))
	for i, r := range returns {
		series[i] = models.ReturnPoint{Date: start.AddDate(0, 0, i), Return: r}
	}
	return series
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateEmptySeries(t *testing.T) {
	m := Evaluate(nil, 0.04)
	if m != (models.Metrics{}) {
		t.Errorf("empty series must give all-zero metrics, got %+v", m)
	}
}

func TestEvaluateSingleDay(t *testing.T) {
	cases := []struct {
		name   string
		r      float64
		wantDD float64
	}{
		{"gain", 0.05, 0},
		{"loss", -0.05, -0.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Evaluate(returnSeries(date(2025, time.January, 1), tc.r), 0.04)
			if !almostEqual(m.TotalReturn, tc.r) {
				t.Errorf("TotalReturn = %f, want %f", m.TotalReturn, tc.r)
			}
			if !almostEqual(m.MaxDrawdown, tc.wantDD) {
				t.Errorf("MaxDrawdown = %f, want %f", m.MaxDrawdown, tc.wantDD)
			}
			// Zero span and a single observation.
			if m.CAGR != 0 || m.AnnualVolatility != 0 || m.SharpeRatio != 0 {
				t.Errorf("CAGR/vol/Sharpe = %f/%f/%f, want zeros", m.CAGR, m.AnnualVolatility, m.SharpeRatio)
			}
		})
	}
}

func TestEvaluateCompounding(t *testing.T) {
	m := Evaluate(returnSeries(date(2025, time.January, 1), 0.1, -0.05), 0.04)

	wantTotal := 1.1*0.95 - 1
	if !almostEqual(m.TotalReturn, wantTotal) {
		t.Errorf("TotalReturn = %f, want %f", m.TotalReturn, wantTotal)
	}

	// Peak after day one is 1.1; day two pulls the curve to 1.045.
	wantDD := 1.045/1.1 - 1
	if !almostEqual(m.MaxDrawdown, wantDD) {
		t.Errorf("MaxDrawdown = %f, want %f", m.MaxDrawdown, wantDD)
	}

	wantVol := stddev([]float64{0.1, -0.05}) * math.Sqrt(252)
	if !almostEqual(m.AnnualVolatility, wantVol) {
		t.Errorf("AnnualVolatility = %f, want %f", m.AnnualVolatility, wantVol)
	}

	// One-day span: (1+total)^365.25 - 1.
	wantCAGR := math.Pow(1+wantTotal, 365.25) - 1
	if !almostEqual(m.CAGR, wantCAGR) {
		t.Errorf("CAGR = %f, want %f", m.CAGR, wantCAGR)
	}
}

func TestEvaluateZeroVarianceSharpe(t *testing.T) {
	m := Evaluate(returnSeries(date(2025, time.January, 1), 0.001, 0.001, 0.001, 0.001), 0.04)
	if m.SharpeRatio != 0 {
		t.Errorf("Sharpe = %f, want 0 on zero-variance excess returns", m.SharpeRatio)
	}
}

func TestEvaluateSharpeSign(t *testing.T) {
	up := Evaluate(returnSeries(date(2025, time.January, 1), 0.01, 0.012, 0.009, 0.011), 0.04)
	if up.SharpeRatio <= 0 {
		t.Errorf("Sharpe = %f, want positive for returns well above risk-free", up.SharpeRatio)
	}

	down := Evaluate(returnSeries(date(2025, time.January, 1), -0.01, -0.012, -0.009, -0.011), 0.04)
	if down.SharpeRatio >= 0 {
		t.Errorf("Sharpe = %f, want negative for consistently losing returns", down.SharpeRatio)
	}
}

func TestMaxDrawdownRecovery(t *testing.T) {
	// Down 20%, then full recovery and a new high: drawdown must keep
	// the trough, not the endpoint.
	m := Evaluate(returnSeries(date(2025, time.January, 1), -0.2, 0.25, 0.1), 0.04)
	if !almostEqual(m.MaxDrawdown, -0.2) {
		t.Errorf("MaxDrawdown = %f, want -0.2", m.MaxDrawdown)
	}
}
