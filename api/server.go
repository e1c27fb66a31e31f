// Package api provides the HTTP REST API for the momentum backtester.
//
// It exposes endpoints for running backtests, ranking the universe at a
// given date, and health checks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/seenimoa/momentum/internal/backtest"
	"github.com/seenimoa/momentum/internal/config"
	"github.com/seenimoa/momentum/internal/datasource"
	"github.com/seenimoa/momentum/internal/momentum"
	"github.com/seenimoa/momentum/internal/report"
	"github.com/seenimoa/momentum/pkg/utils"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	provider datasource.PriceProvider
	universe []string
	logger   *zap.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, provider datasource.PriceProvider, universe []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		cfg:      cfg,
		provider: provider,
		universe: universe,
		logger:   logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		s.logger.Info("api server listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-done
	s.logger.Info("shutting down api server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/universe", s.handleUniverse)
		r.Get("/rank", s.handleRank)
		r.Post("/backtest", s.handleBacktest)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BacktestRequest is the body for POST /api/v1/backtest. Rebalance
// dates are the weekday-shifted month ends between From and To.
type BacktestRequest struct {
	From           string   `json:"from"`                      // YYYY-MM-DD
	To             string   `json:"to,omitempty"`              // YYYY-MM-DD, default today
	TopN           int      `json:"top_n,omitempty"`           // default from config
	LookbackMonths int      `json:"lookback_months,omitempty"` // default from config
	CommissionPct  float64  `json:"commission_pct,omitempty"`  // fraction, default from config
	Symbols        []string `json:"symbols,omitempty"`         // override the loaded universe
	Chart          bool     `json:"chart,omitempty"`           // include the equity-curve SVG
}

// BacktestResponse wraps a run result with its optional chart.
type BacktestResponse struct {
	Result   *backtest.Result `json:"result"`
	ChartSVG string           `json:"chart_svg,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"universe": len(s.universe),
			"time_ist": utils.FormatDate(time.Now().In(utils.IST)),
		},
	})
}

func (s *Server) handleUniverse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.universe,
	})
}

// handleRank serves GET /api/v1/rank?as_of=YYYY-MM-DD&top=N.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().In(utils.IST)
	if v := r.URL.Query().Get("as_of"); v != "" {
		parsed, err := utils.ParseDateIST(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date; use YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	top := s.strategyTopN()
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		top = n
	}

	if len(s.universe) == 0 {
		writeError(w, http.StatusServiceUnavailable, "no universe loaded")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	ranker := momentum.NewRanker(s.provider, s.scoringParams(), s.logger)
	ranked, err := ranker.RankAt(ctx, s.universe, asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"as_of":  utils.FormatDate(asOf),
			"ranked": momentum.TopN(ranked, top),
		},
	})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.From == "" {
		writeError(w, http.StatusBadRequest, "from date is required")
		return
	}

	from, err := utils.ParseDateIST(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date; use YYYY-MM-DD")
		return
	}
	to := time.Now().In(utils.IST)
	if req.To != "" {
		to, err = utils.ParseDateIST(req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; use YYYY-MM-DD")
			return
		}
	}

	universe := s.universe
	if len(req.Symbols) > 0 {
		universe = make([]string, 0, len(req.Symbols))
		for _, sym := range req.Symbols {
			universe = append(universe, utils.NormalizeTicker(sym))
		}
	}

	dates := utils.MonthEnds(from, to)
	if len(dates) < 2 {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("date range %s..%s spans %d rebalance dates; need at least 2",
				req.From, req.To, len(dates)))
		return
	}

	cfg := s.driverConfig()
	if req.TopN > 0 {
		cfg.TopN = req.TopN
	}
	if req.LookbackMonths > 0 {
		cfg.LookbackMonths = req.LookbackMonths
	}
	if req.CommissionPct > 0 {
		cfg.CommissionPct = req.CommissionPct
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	driver := backtest.NewDriver(s.provider, cfg, s.logger)
	result, err := driver.Run(ctx, universe, dates)
	if err != nil {
		status := http.StatusInternalServerError
		if isConfigError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	resp := BacktestResponse{Result: result}
	if req.Chart {
		reportCfg := report.DefaultConfig()
		if s.cfg != nil && s.cfg.Strategy.InitialCapital > 0 {
			reportCfg.InitialCapital = s.cfg.Strategy.InitialCapital
		}
		resp.ChartSVG = report.EquityCurveSVG(result, reportCfg)
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

// ============================================================
// Helpers
// ============================================================

func (s *Server) strategyTopN() int {
	if s.cfg != nil && s.cfg.Strategy.TopN > 0 {
		return s.cfg.Strategy.TopN
	}
	return backtest.DefaultConfig().TopN
}

func (s *Server) scoringParams() momentum.Params {
	p := momentum.DefaultParams()
	if s.cfg != nil {
		if s.cfg.Strategy.LookbackMonths > 0 {
			p.LookbackMonths = s.cfg.Strategy.LookbackMonths
		}
		if s.cfg.Strategy.MinCoverage > 0 {
			p.MinCoverage = s.cfg.Strategy.MinCoverage
		}
	}
	return p
}

func (s *Server) driverConfig() backtest.Config {
	cfg := backtest.DefaultConfig()
	if s.cfg == nil {
		return cfg
	}
	if s.cfg.Strategy.TopN > 0 {
		cfg.TopN = s.cfg.Strategy.TopN
	}
	if s.cfg.Strategy.LookbackMonths > 0 {
		cfg.LookbackMonths = s.cfg.Strategy.LookbackMonths
	}
	if s.cfg.Strategy.MinCoverage > 0 {
		cfg.MinCoverage = s.cfg.Strategy.MinCoverage
	}
	if s.cfg.Strategy.RiskFreeRate > 0 {
		cfg.RiskFreeRate = s.cfg.Strategy.RiskFreeRate
	}
	if s.cfg.Strategy.CommissionPct > 0 {
		cfg.CommissionPct = s.cfg.Strategy.CommissionPct
	}
	return cfg
}

func isConfigError(err error) bool {
	return errors.Is(err, backtest.ErrConfig)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
