// Package report renders backtest results for human consumption: a
// plain-text summary for the CLI and SVG charts with Indian-market
// formatting for embedding in pages or files.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator — Pure Go, Zero Dependencies
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	LineColor    string // curve color (default: "#2196f3")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		LineColor:    "#2196f3",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// ════════════════════════════════════════════════════════════════════
// Equity Curve Chart
// ════════════════════════════════════════════════════════════════════

// EquityCurveChart renders the growth of the given starting capital
// through a daily return series as an SVG line chart. The curve is the
// running product of (1+r) scaled by initialCapital.
func EquityCurveChart(returns []models.ReturnPoint, initialCapital float64, cfg ChartConfig) string {
	if len(returns) == 0 {
		return emptySVG(cfg, "No return data")
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Equity Curve"
	}
	if initialCapital <= 0 {
		initialCapital = 1
	}

	equity := make([]float64, len(returns))
	cum := initialCapital
	for i, p := range returns {
		cum *= 1 + p.Return
		equity[i] = cum
	}

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := equity[0], equity[0]
	for _, v := range equity {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	minVal = math.Min(minVal, initialCapital)
	maxVal = math.Max(maxVal, initialCapital)

	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Y-axis grid and INR labels
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, utils.FormatINR(val)))
	}

	// Initial-capital baseline
	baseRatio := (initialCapital - minVal) / vRange
	baseY := float64(py+ph) - baseRatio*float64(ph)
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#bdbdbd" stroke-width="1"/>`,
		px, baseY, px+pw, baseY))

	// Curve path
	denom := float64(len(equity) - 1)
	if denom == 0 {
		denom = 1
	}
	var pathParts []string
	for i, v := range equity {
		cx := float64(px) + float64(i)*float64(pw)/denom
		ratio := (v - minVal) / vRange
		cy := float64(py+ph) - ratio*float64(ph)
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, cx, cy))
	}
	sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
		strings.Join(pathParts, " "), cfg.LineColor))

	// X-axis date labels
	interval := len(returns) / 6
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < len(returns); i += interval {
		cx := float64(px) + float64(i)*float64(pw)/denom
		label := returns[i].Date.Format("02 Jan 06")
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-45,%.1f,%d)">%s</text>`,
			cx, py+ph+18, cfg.FontSize-1, cfg.TextColor, cx, py+ph+18, label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Drawdown Chart
// ════════════════════════════════════════════════════════════════════

// DrawdownChart renders the running drawdown of a return series as a
// filled area below zero.
func DrawdownChart(returns []models.ReturnPoint, cfg ChartConfig) string {
	if len(returns) == 0 {
		return emptySVG(cfg, "No return data")
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Drawdown"
	}

	dd := make([]float64, len(returns))
	cum, peak := 1.0, 1.0
	minDD := 0.0
	for i, p := range returns {
		cum *= 1 + p.Return
		if cum > peak {
			peak = cum
		}
		dd[i] = cum/peak - 1
		if dd[i] < minDD {
			minDD = dd[i]
		}
	}

	px, py, pw, ph := cfg.plotArea()
	vRange := -minDD
	if vRange < 0.001 {
		vRange = 0.01
	}
	vRange *= 1.05

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	gridLines := 4
	for i := 0; i <= gridLines; i++ {
		val := -vRange * float64(i) / float64(gridLines)
		y := py + int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, utils.FormatPct(val)))
	}

	denom := float64(len(dd) - 1)
	if denom == 0 {
		denom = 1
	}
	parts := []string{fmt.Sprintf("M%d,%d", px, py)}
	for i, v := range dd {
		cx := float64(px) + float64(i)*float64(pw)/denom
		cy := float64(py) + (-v/vRange)*float64(ph)
		parts = append(parts, fmt.Sprintf("L%.1f,%.1f", cx, cy))
	}
	parts = append(parts, fmt.Sprintf("L%d,%d Z", px+pw, py))
	sb.WriteString(fmt.Sprintf(`<path d="%s" fill="#ffcdd2" stroke="#e53935" stroke-width="1.5" opacity="0.85"/>`,
		strings.Join(parts, " ")))

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
