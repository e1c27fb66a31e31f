// momentum — monthly-rebalanced NSE momentum backtester.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/momentum/api"
	"github.com/seenimoa/momentum/internal/backtest"
	"github.com/seenimoa/momentum/internal/config"
	"github.com/seenimoa/momentum/internal/datasource"
	"github.com/seenimoa/momentum/internal/momentum"
	"github.com/seenimoa/momentum/internal/report"
	"github.com/seenimoa/momentum/internal/universe"
	"github.com/seenimoa/momentum/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "momentum",
	Short: "Monthly-rebalanced NSE momentum backtester",
	Long: `momentum ranks an NSE equity universe by 12-minus-1 trailing
momentum, holds the top N names with monthly rebalancing, and reports
the realized performance of the strategy.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger, err = config.NewLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync() //nolint:errcheck
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("momentum %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Backtest Command ---

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the momentum strategy over a historical horizon",
	Long: `Run the monthly-rebalanced momentum backtest between --from and
--to. Rebalances happen on the last weekday of each month in the range.

Examples:
  momentum backtest --from 2020-01-01 --to 2025-06-30
  momentum backtest --from 2022-01-01 --top 5 --commission 0.001
  momentum backtest --from 2022-01-01 --chart equity.svg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fromStr, _ := cmd.Flags().GetString("from")
		if fromStr == "" {
			return fmt.Errorf("--from is required (YYYY-MM-DD)")
		}
		from, err := utils.ParseDateIST(fromStr)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}

		to := time.Now().In(utils.IST)
		if toStr, _ := cmd.Flags().GetString("to"); toStr != "" {
			to, err = utils.ParseDateIST(toStr)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}
		}

		symbols := loadUniverse(cmd)
		if len(symbols) == 0 {
			return fmt.Errorf("universe is empty; check --universe / data.universe_file")
		}

		dates := utils.MonthEnds(from, to)
		if len(dates) < 2 {
			return fmt.Errorf("range %s..%s has %d rebalance dates; need at least 2",
				utils.FormatDate(from), utils.FormatDate(to), len(dates))
		}

		btCfg := driverConfig()
		if top, _ := cmd.Flags().GetInt("top"); top > 0 {
			btCfg.TopN = top
		}
		if commission, _ := cmd.Flags().GetFloat64("commission"); commission > 0 {
			btCfg.CommissionPct = commission
		}

		driver := backtest.NewDriver(buildProvider(), btCfg, logger)
		result, err := driver.Run(cmd.Context(), symbols, dates)
		if err != nil {
			return err
		}

		repCfg := report.DefaultConfig()
		repCfg.InitialCapital = cfg.Strategy.InitialCapital
		repCfg.MaxTrades, _ = cmd.Flags().GetInt("max-trades")

		text, err := report.Text(result, repCfg)
		if err != nil {
			return err
		}
		fmt.Print(text)

		if chartPath, _ := cmd.Flags().GetString("chart"); chartPath != "" {
			svg := report.EquityCurveSVG(result, repCfg)
			if err := os.WriteFile(chartPath, []byte(svg), 0o644); err != nil {
				return fmt.Errorf("writing chart: %w", err)
			}
			fmt.Printf("\nEquity curve written to %s\n", chartPath)
		}
		return nil
	},
}

func init() {
	backtestCmd.Flags().String("from", "", "backtest start date (YYYY-MM-DD)")
	backtestCmd.Flags().String("to", "", "backtest end date (YYYY-MM-DD, default today)")
	backtestCmd.Flags().Int("top", 0, "portfolio size override")
	backtestCmd.Flags().Float64("commission", 0, "flat cost per position change as fraction")
	backtestCmd.Flags().Int("max-trades", 0, "tradebook rows to print (0 = all)")
	backtestCmd.Flags().String("chart", "", "write the equity-curve SVG to this path")
	backtestCmd.Flags().String("universe", "", "universe CSV path override")
	backtestCmd.Flags().Bool("wiki", false, "load the universe from Wikipedia instead of CSV")
}

// --- Rank Command ---

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the universe by momentum at a date",
	Long: `Score and rank every universe symbol by 12-minus-1 momentum as of
the given date (default today) and print the top N.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf := time.Now().In(utils.IST)
		if v, _ := cmd.Flags().GetString("as-of"); v != "" {
			parsed, err := utils.ParseDateIST(v)
			if err != nil {
				return fmt.Errorf("invalid --as-of date: %w", err)
			}
			asOf = parsed
		}

		symbols := loadUniverse(cmd)
		if len(symbols) == 0 {
			return fmt.Errorf("universe is empty; check --universe / data.universe_file")
		}

		top := cfg.Strategy.TopN
		if v, _ := cmd.Flags().GetInt("top"); v > 0 {
			top = v
		}

		ranker := momentum.NewRanker(buildProvider(), scoringParams(), logger)
		ranked, err := ranker.RankAt(cmd.Context(), symbols, asOf)
		if err != nil {
			return err
		}

		fmt.Printf("\nMomentum ranking as of %s (%d of %d scored)\n\n",
			utils.FormatDate(asOf), len(ranked), len(symbols))
		for i, s := range momentum.TopN(ranked, top) {
			fmt.Printf("  %2d. %-12s %s  at %s\n",
				i+1, s.Symbol, utils.FormatPct(*s.Value), utils.FormatINR(s.Price))
		}
		return nil
	},
}

func init() {
	rankCmd.Flags().String("as-of", "", "ranking date (YYYY-MM-DD, default today)")
	rankCmd.Flags().Int("top", 0, "number of symbols to print")
	rankCmd.Flags().String("universe", "", "universe CSV path override")
	rankCmd.Flags().Bool("wiki", false, "load the universe from Wikipedia instead of CSV")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		symbols := loadUniverse(cmd)
		srv := api.NewServer(cfg, buildProvider(), symbols, logger)

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().String("universe", "", "universe CSV path override")
	serveCmd.Flags().Bool("wiki", false, "load the universe from Wikipedia instead of CSV")
}

// --- Shared helpers ---

// buildProvider assembles the price provider chain: Yahoo Finance with
// rate limiting, wrapped in the SQLite window cache when configured.
func buildProvider() datasource.PriceProvider {
	yf := datasource.NewYFinance(
		datasource.WithLogger(logger),
		datasource.WithRateLimit(cfg.Data.RatePerSecond),
		datasource.WithParallelism(cfg.Data.FetchParallel),
	)

	if cfg.Data.CachePath == "" {
		return yf
	}
	cache, err := datasource.NewPriceCache(cfg.Data.CachePath)
	if err != nil {
		logger.Warn("price cache unavailable, running uncached",
			zap.String("path", cfg.Data.CachePath),
			zap.Error(err))
		return yf
	}
	return datasource.NewCachedPrices(yf, cache, logger)
}

// loadUniverse resolves the symbol universe: --wiki scrapes the NIFTY 50
// constituents page, otherwise the configured CSV file is read.
func loadUniverse(cmd *cobra.Command) []string {
	if wiki, _ := cmd.Flags().GetBool("wiki"); wiki {
		symbols, err := universe.FetchWiki(cmd.Context(), "")
		if err != nil {
			logger.Warn("wikipedia universe fetch failed", zap.Error(err))
			return nil
		}
		return symbols
	}

	path := cfg.Data.UniverseFile
	if override, _ := cmd.Flags().GetString("universe"); override != "" {
		path = override
	}
	return universe.LoadCSV(path, logger)
}

func scoringParams() momentum.Params {
	return momentum.Params{
		LookbackMonths: cfg.Strategy.LookbackMonths,
		MinCoverage:    cfg.Strategy.MinCoverage,
	}
}

func driverConfig() backtest.Config {
	return backtest.Config{
		TopN:           cfg.Strategy.TopN,
		LookbackMonths: cfg.Strategy.LookbackMonths,
		MinCoverage:    cfg.Strategy.MinCoverage,
		RiskFreeRate:   cfg.Strategy.RiskFreeRate,
		CommissionPct:  cfg.Strategy.CommissionPct,
	}
}
