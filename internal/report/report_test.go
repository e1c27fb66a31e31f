package report

import (
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/momentum/internal/backtest"
	"github.com/seenimoa/momentum/internal/portfolio"
	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, utils.IST)
}

func sampleResult() *backtest.Result {
	return &backtest.Result{
		From:     date(2025, time.January, 31),
		To:       date(2025, time.June, 27),
		Universe: 50,
		TopN:     10,
		Holdings: []models.Position{
			{Symbol: "RELIANCE", EntryPrice: 2500, EntryDate: date(2025, time.January, 31), Quantity: 1},
		},
		Tradebook: []models.Trade{
			{
				Symbol:     "TCS",
				EntryPrice: 3400,
				ExitPrice:  3740,
				EntryDate:  date(2025, time.January, 31),
				ExitDate:   date(2025, time.April, 30),
				Quantity:   1,
			},
		},
		Events: []portfolio.Event{
			{AsOf: date(2025, time.January, 31), Opened: []string{"RELIANCE", "TCS"}},
			{AsOf: date(2025, time.April, 30), Closed: []string{"TCS"}},
		},
		Returns: []models.ReturnPoint{
			{Date: date(2025, time.February, 3), Return: 0.01},
			{Date: date(2025, time.February, 4), Return: -0.005},
		},
		Metrics: models.Metrics{
			TotalReturn: 0.0495,
			CAGR:        0.12,
			MaxDrawdown: -0.05,
			SharpeRatio: 1.3,
		},
	}
}

func TestTextReportContents(t *testing.T) {
	out, err := Text(sampleResult(), DefaultConfig())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}

	for _, want := range []string{
		"Momentum Backtest",
		"2025-01-31",
		"2025-06-27",
		"RELIANCE",
		"TCS",
		"PERFORMANCE",
		"Total Return",
		"+4.95%",
		"Max Drawdown",
		"-5.00%",
		"₹2,500.00",
		"+10.00%", // TCS round trip
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestTextReportNilResult(t *testing.T) {
	if _, err := Text(nil, DefaultConfig()); err == nil {
		t.Fatal("expected an error for a nil result")
	}
}

func TestTextReportTradeLimit(t *testing.T) {
	res := sampleResult()
	for i := 0; i < 30; i++ {
		res.Tradebook = append(res.Tradebook, models.Trade{
			Symbol:     "FILLER",
			EntryPrice: 100,
			ExitPrice:  101,
			EntryDate:  date(2025, time.February, 28),
			ExitDate:   date(2025, time.March, 31),
		})
	}

	cfg := DefaultConfig()
	cfg.MaxTrades = 5
	out, err := Text(res, cfg)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(out, "showing 5") {
		t.Error("report should note the truncated tradebook")
	}
	if got := strings.Count(out, "FILLER"); got > 5 {
		t.Errorf("printed %d FILLER rows, want at most 5", got)
	}
}

func TestEquityCurveChart(t *testing.T) {
	returns := []models.ReturnPoint{
		{Date: date(2025, time.February, 3), Return: 0.01},
		{Date: date(2025, time.February, 4), Return: 0.02},
		{Date: date(2025, time.February, 5), Return: -0.01},
	}

	svg := EquityCurveChart(returns, 1000000, DefaultChartConfig())
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a well-formed SVG document")
	}
	if !strings.Contains(svg, "<path") {
		t.Error("chart has no curve path")
	}
	if !strings.Contains(svg, "₹") {
		t.Error("axis labels should use INR formatting")
	}
}

func TestEquityCurveChartEmpty(t *testing.T) {
	svg := EquityCurveChart(nil, 1000000, DefaultChartConfig())
	if !strings.Contains(svg, "No return data") {
		t.Error("empty series should render the placeholder SVG")
	}
}

func TestDrawdownChart(t *testing.T) {
	returns := []models.ReturnPoint{
		{Date: date(2025, time.February, 3), Return: -0.1},
		{Date: date(2025, time.February, 4), Return: 0.05},
	}
	svg := DrawdownChart(returns, DefaultChartConfig())
	if !strings.Contains(svg, "<path") {
		t.Error("drawdown chart has no area path")
	}
}
