package universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/momentum/pkg/utils"
)

// Nifty50WikiURL is the constituents page scraped by FetchWiki when no
// URL is given. Unlike the NSE site it serves static HTML.
const Nifty50WikiURL = "https://en.wikipedia.org/wiki/NIFTY_50"

var wikiClient = &http.Client{Timeout: 30 * time.Second}

// FetchWiki scrapes index constituents from a Wikipedia index page.
// It scans wikitable rows for a cell ending in ".NS" (the Yahoo-style
// symbol column used on the index pages) and returns the NSE symbols
// in page order.
func FetchWiki(ctx context.Context, url string) ([]string, error) {
	if url == "" {
		url = Nifty50WikiURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "momentum-backtester/1.0")

	resp, err := wikiClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch constituents page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituents page: %w", err)
	}

	return extractConstituents(doc), nil
}

// extractConstituents pulls symbols out of a parsed constituents page.
func extractConstituents(doc *goquery.Document) []string {
	var symbols []string
	seen := make(map[string]bool)

	doc.Find("table.wikitable tbody tr").Each(func(_ int, row *goquery.Selection) {
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if !strings.HasSuffix(text, ".NS") {
				return
			}
			symbol := utils.NormalizeTicker(utils.FromYFinanceTicker(text))
			if symbol == "" || seen[symbol] {
				return
			}
			seen[symbol] = true
			symbols = append(symbols, symbol)
		})
	})

	return symbols
}
