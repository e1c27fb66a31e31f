package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

// YFinance implements PriceProvider using the Yahoo Finance chart API.
// Per-symbol fetches at one as-of date are independent, so GetPrices
// fans out concurrently; all results are collected before returning.
type YFinance struct {
	cache    *Cache
	limiter  *RateLimiter
	logger   *zap.Logger
	parallel int
}

// Option configures a YFinance provider.
type Option func(*YFinance)

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(y *YFinance) { y.logger = logger }
}

// WithRateLimit overrides the default request budget per second.
func WithRateLimit(perSecond int) Option {
	return func(y *YFinance) { y.limiter = NewRateLimiter(perSecond, time.Second) }
}

// WithParallelism caps the number of concurrent symbol fetches.
func WithParallelism(n int) Option {
	return func(y *YFinance) {
		if n > 0 {
			y.parallel = n
		}
	}
}

// NewYFinance creates a Yahoo Finance price provider.
func NewYFinance(opts ...Option) *YFinance {
	y := &YFinance{
		cache:    NewCache(5 * time.Minute),
		limiter:  NewRateLimiter(5, time.Second), // 5 req/s
		logger:   zap.NewNop(),
		parallel: 5,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 chart API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfIndicators struct {
	Quote    []yfQuote    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfQuote struct {
	Close []*float64 `json:"close"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- PriceProvider implementation ---

// GetPrices fetches adjusted closes for all symbols concurrently.
// Symbols whose fetch fails are logged at warning level and omitted
// from the table; the backtest treats them as missing data. Only
// context cancellation aborts the whole call.
func (y *YFinance) GetPrices(ctx context.Context, symbols []string, start, end time.Time) (models.PriceTable, error) {
	table := make(models.PriceTable, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(y.parallel)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			series, err := y.fetchDailyCloses(gctx, symbol, start, end)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				y.logger.Warn("price fetch failed, treating as missing data",
					zap.String("symbol", symbol),
					zap.Error(err))
				return nil // non-fatal
			}
			if len(series) == 0 {
				return nil
			}
			mu.Lock()
			table[symbol] = series
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

// fetchDailyCloses retrieves one symbol's daily adjusted closes over
// [start, end], preferring the adjclose series and falling back to the
// raw close when Yahoo omits it.
func (y *YFinance) fetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]models.PricePoint, error) {
	yfTicker := utils.ToYFinanceTicker(symbol)

	cacheKey := fmt.Sprintf("closes:%s:%d:%d", yfTicker, start.Unix(), end.Unix())
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.([]models.PricePoint), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		yfTicker, start.Unix(), end.Unix(),
	)

	body, err := doGet(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yfinance chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	series := parseCloseSeries(symbol, resp.Chart.Result[0])
	y.cache.Set(cacheKey, series)
	return series, nil
}

// parseCloseSeries converts a chart result into a date-ascending price
// series, dropping null bars and duplicate dates.
func parseCloseSeries(symbol string, result yfChartResult) []models.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	closes := result.Indicators.Quote[0].Close
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	series := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		var price *float64
		if i < len(adjCloses) && adjCloses[i] != nil {
			price = adjCloses[i]
		} else if i < len(closes) && closes[i] != nil {
			price = closes[i]
		}
		if price == nil || *price <= 0 {
			continue
		}
		series = append(series, models.PricePoint{
			Symbol: symbol,
			Date:   utils.DateOnly(time.Unix(ts, 0).In(utils.IST)),
			Close:  *price,
		})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	// Yahoo occasionally repeats the final bar; keep the last value per date.
	deduped := series[:0]
	for _, p := range series {
		if n := len(deduped); n > 0 && utils.SameDate(deduped[n-1].Date, p.Date) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}
