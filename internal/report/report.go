package report

import (
	"fmt"
	"strings"

	"github.com/seenimoa/momentum/internal/backtest"
	"github.com/seenimoa/momentum/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Backtest Report — Plain Text
// ════════════════════════════════════════════════════════════════════

// Config controls report rendering.
type Config struct {
	Title          string      // report title (default: "Momentum Backtest")
	InitialCapital float64     // capital base for the equity curve (default: 1,000,000)
	MaxTrades      int         // tradebook rows to print, 0 = all
	ChartCfg       ChartConfig // chart rendering config
}

// DefaultConfig returns sensible report defaults.
func DefaultConfig() Config {
	return Config{
		Title:          "Momentum Backtest",
		InitialCapital: 1000000,
		ChartCfg:       DefaultChartConfig(),
	}
}

// Text renders a terminal-friendly summary of a backtest result:
// horizon, performance metrics, the final holdings snapshot, and the
// tradebook.
func Text(res *backtest.Result, cfg Config) (string, error) {
	if res == nil {
		return "", fmt.Errorf("result is nil")
	}
	if cfg.Title == "" {
		cfg.Title = DefaultConfig().Title
	}

	var sb strings.Builder
	line := strings.Repeat("═", 64)
	thinLine := strings.Repeat("─", 64)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", cfg.Title))
	sb.WriteString(fmt.Sprintf("  %s → %s | universe: %d | top-N: %d\n",
		utils.FormatDate(res.From), utils.FormatDate(res.To), res.Universe, res.TopN))
	sb.WriteString(line + "\n")

	// Metrics
	m := res.Metrics
	sb.WriteString("\n  ■ PERFORMANCE\n")
	sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Total Return", utils.FormatPct(m.TotalReturn)))
	sb.WriteString(fmt.Sprintf("    %-22s %s\n", "CAGR", utils.FormatPct(m.CAGR)))
	sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Max Drawdown", utils.FormatPct(m.MaxDrawdown)))
	sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Annual Volatility", utils.FormatPct(m.AnnualVolatility)))
	sb.WriteString(fmt.Sprintf("    %-22s %.2f\n", "Sharpe Ratio", m.SharpeRatio))
	if cfg.InitialCapital > 0 {
		final := cfg.InitialCapital * (1 + m.TotalReturn)
		sb.WriteString(fmt.Sprintf("    %-22s %s → %s\n", "Capital",
			utils.FormatINR(cfg.InitialCapital), utils.FormatINR(final)))
	}
	sb.WriteString(thinLine + "\n")

	// Final holdings (snapshot before run-end close)
	sb.WriteString(fmt.Sprintf("\n  ■ FINAL HOLDINGS (%d)\n", len(res.Holdings)))
	if len(res.Holdings) == 0 {
		sb.WriteString("    none\n")
	}
	for _, pos := range res.Holdings {
		sb.WriteString(fmt.Sprintf("    %-12s entered %s at %s\n",
			pos.Symbol, utils.FormatDate(pos.EntryDate), utils.FormatINR(pos.EntryPrice)))
	}
	sb.WriteString(thinLine + "\n")

	// Tradebook
	trades := res.Tradebook
	shown := len(trades)
	if cfg.MaxTrades > 0 && shown > cfg.MaxTrades {
		shown = cfg.MaxTrades
	}
	sb.WriteString(fmt.Sprintf("\n  ■ TRADEBOOK (%d trades", len(trades)))
	if shown < len(trades) {
		sb.WriteString(fmt.Sprintf(", showing %d", shown))
	}
	sb.WriteString(")\n")
	for _, t := range trades[:shown] {
		sb.WriteString(fmt.Sprintf("    %-12s %s → %s  %s → %s  (%s)\n",
			t.Symbol,
			utils.FormatDate(t.EntryDate), utils.FormatDate(t.ExitDate),
			utils.FormatINR(t.EntryPrice), utils.FormatINR(t.ExitPrice),
			utils.FormatPct(t.PnLPercent()/100)))
	}
	sb.WriteString(thinLine + "\n")

	// Turnover summary
	var closed, opened int
	for _, ev := range res.Events {
		closed += len(ev.Closed)
		opened += len(ev.Opened)
	}
	sb.WriteString(fmt.Sprintf("\n  Rebalances: %d | positions opened: %d | positions closed: %d\n",
		len(res.Events), opened, closed))
	sb.WriteString(line + "\n")

	return sb.String(), nil
}

// EquityCurveSVG renders the result's equity curve chart.
func EquityCurveSVG(res *backtest.Result, cfg Config) string {
	chartCfg := cfg.ChartCfg
	if chartCfg.Title == "" {
		chartCfg.Title = "Equity Curve"
	}
	return EquityCurveChart(res.Returns, cfg.InitialCapital, chartCfg)
}
