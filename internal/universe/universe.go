// Package universe loads the tradable symbol universe for a backtest,
// either from an NSE index-constituent CSV file or by scraping an index
// constituents page.
package universe

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/seenimoa/momentum/pkg/utils"
)

// symbolColumn is the position of the symbol field in NSE index
// constituent files (Company Name, Industry, Symbol, ...).
const symbolColumn = 2

// LoadCSV reads an ordered symbol list from an NSE index-constituent
// CSV file. The header row is skipped. A missing or malformed file
// yields an empty universe with a warning, never an error: an empty
// universe is rejected later by the driver's configuration check.
func LoadCSV(path string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("universe file not readable", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer f.Close()

	return parseConstituents(f, path, logger)
}

// parseConstituents reads the constituent rows from r, resolving the
// symbol column from the header when one is present.
func parseConstituents(r io.Reader, path string, logger *zap.Logger) []string {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // constituent files vary in trailing columns

	header, err := reader.Read()
	if err != nil {
		logger.Warn("universe file empty or unreadable", zap.String("path", path), zap.Error(err))
		return nil
	}

	col := symbolColumn
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "symbol") {
			col = i
			break
		}
	}

	var symbols []string
	seen := make(map[string]bool)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed universe row", zap.String("path", path), zap.Error(err))
			continue
		}
		if col >= len(row) {
			continue
		}
		symbol := utils.NormalizeTicker(row[col])
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}

	if len(symbols) == 0 {
		logger.Warn("universe file yielded no symbols", zap.String("path", path))
	}
	return symbols
}
