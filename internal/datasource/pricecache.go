package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/seenimoa/momentum/pkg/models"
	"github.com/seenimoa/momentum/pkg/utils"
)

// PriceCache persists fetched price tables in a SQLite database so that
// repeat backtests over the same windows avoid network calls. A cache
// hit returns exactly the table that was stored: same symbols, same
// dates, same closes.
type PriceCache struct {
	db *sql.DB
}

// NewPriceCache opens (or creates) the cache database at dbPath.
func NewPriceCache(dbPath string) (*PriceCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open price cache: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS cache_keys (
	key        TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS prices (
	key    TEXT NOT NULL,
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (key, symbol, date)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create price cache schema: %w", err)
	}

	return &PriceCache{db: db}, nil
}

// Close closes the underlying database.
func (pc *PriceCache) Close() error {
	return pc.db.Close()
}

// Get returns the table stored under key, or ok=false on a miss.
func (pc *PriceCache) Get(ctx context.Context, key string) (models.PriceTable, bool, error) {
	var createdAt string
	err := pc.db.QueryRowContext(ctx,
		`SELECT created_at FROM cache_keys WHERE key = ?`, key).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache key: %w", err)
	}

	rows, err := pc.db.QueryContext(ctx,
		`SELECT symbol, date, close FROM prices WHERE key = ? ORDER BY symbol, date`, key)
	if err != nil {
		return nil, false, fmt.Errorf("query cached prices: %w", err)
	}
	defer rows.Close()

	table := make(models.PriceTable)
	for rows.Next() {
		var symbol, dateStr string
		var close float64
		if err := rows.Scan(&symbol, &dateStr, &close); err != nil {
			return nil, false, fmt.Errorf("scan cached price: %w", err)
		}
		date, err := utils.ParseDateIST(dateStr)
		if err != nil {
			return nil, false, fmt.Errorf("bad cached date %q: %w", dateStr, err)
		}
		table[symbol] = append(table[symbol], models.PricePoint{
			Symbol: symbol,
			Date:   date,
			Close:  close,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate cached prices: %w", err)
	}

	return table, true, nil
}

// Put stores a table under key, replacing any previous entry.
func (pc *PriceCache) Put(ctx context.Context, key string, table models.PriceTable) error {
	tx, err := pc.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear cache entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_keys (key, created_at) VALUES (?, ?)`,
		key, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert cache key: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO prices (key, symbol, date, close) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for symbol, series := range table {
		for _, p := range series {
			if _, err := stmt.ExecContext(ctx, key, symbol, utils.FormatDate(p.Date), p.Close); err != nil {
				return fmt.Errorf("insert cached price %s %s: %w", symbol, utils.FormatDate(p.Date), err)
			}
		}
	}

	return tx.Commit()
}

// --- Caching provider decorator ---

// CachedPrices wraps a PriceProvider with the SQLite cache. The cache
// key covers the requested window and symbol set, so a hit is
// behaviorally indistinguishable from a fresh fetch of the same inputs.
// Cache failures degrade to a pass-through fetch with a warning.
type CachedPrices struct {
	provider PriceProvider
	cache    *PriceCache
	logger   *zap.Logger
}

// NewCachedPrices wraps provider with cache. A nil logger disables
// diagnostics.
func NewCachedPrices(provider PriceProvider, cache *PriceCache, logger *zap.Logger) *CachedPrices {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPrices{provider: provider, cache: cache, logger: logger}
}

// GetPrices implements PriceProvider.
func (c *CachedPrices) GetPrices(ctx context.Context, symbols []string, start, end time.Time) (models.PriceTable, error) {
	key := cacheKey(symbols, start, end)

	if table, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("price cache read failed, falling back to fetch",
			zap.String("key", key), zap.Error(err))
	} else if ok {
		c.logger.Debug("price cache hit", zap.String("key", key))
		return table, nil
	}

	table, err := c.provider.GetPrices(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, table); err != nil {
		c.logger.Warn("price cache write failed",
			zap.String("key", key), zap.Error(err))
	}
	return table, nil
}

// cacheKey identifies one fetch: the window bounds plus a digest of the
// sorted symbol set, so different universes never collide.
func cacheKey(symbols []string, start, end time.Time) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	h := fnv.New32a()
	h.Write([]byte(strings.Join(sorted, ",")))

	return fmt.Sprintf("%s:%s:%08x", utils.FormatDate(start), utils.FormatDate(end), h.Sum32())
}
