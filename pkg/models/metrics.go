package models

// Metrics holds the headline performance statistics of a realized daily
// return series. All values are fractional (0.25 = 25%) except
// SharpeRatio, which is dimensionless.
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	CAGR             float64 `json:"cagr"`
	MaxDrawdown      float64 `json:"max_drawdown"` // non-positive
	AnnualVolatility float64 `json:"annual_volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
}
