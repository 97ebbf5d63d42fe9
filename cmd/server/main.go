// Package main serves the Adaptive Trend Fusion backtester over a REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/clickhouse"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/config"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/strategies"
)

const timeLayout = "2006-01-02 15:04:05"

// BacktestService wires the strategy and the candle store behind HTTP handlers.
type BacktestService struct {
	clickhouse *clickhouse.Client
	logger     *zap.Logger
	config     *config.Config
}

func NewBacktestService(cfg *config.Config, logger *zap.Logger) (*BacktestService, error) {
	chClient, err := clickhouse.NewClient(cfg.Source.ClickHouse, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
	}
	return &BacktestService{
		clickhouse: chClient,
		logger:     logger,
		config:     cfg,
	}, nil
}

// BacktestRequest is the POST /api/v1/backtest body. Omitted fields fall back
// to the server config.
type BacktestRequest struct {
	Symbols         []string `json:"symbols"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	StartingCapital float64  `json:"starting_capital"`
}

type BacktestResponse struct {
	RequestID string           `json:"request_id"`
	Combined  engine.Combined  `json:"combined"`
	Assets    []*engine.Result `json:"assets"`
	ElapsedMs int64            `json:"elapsed_ms"`
}

func (s *BacktestService) setupHTTPRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/backtest", s.handleBacktestRequest)
		api.GET("/health", s.handleHealthCheck)
	}
}

func (s *BacktestService) handleBacktestRequest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Symbols) == 0 {
		req.Symbols = s.config.Symbols
	}
	if req.From == "" {
		req.From = s.config.Source.From
	}
	if req.To == "" {
		req.To = s.config.Source.To
	}

	from, err := time.ParseInLocation(timeLayout, req.From, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad from: %v", err)})
		return
	}
	to, err := time.ParseInLocation(timeLayout, req.To, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad to: %v", err)})
		return
	}

	requestID := uuid.New().String()
	startTime := time.Now()
	s.logger.Info("Starting backtest execution",
		zap.String("request_id", requestID),
		zap.Strings("symbols", req.Symbols),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	ctx := c.Request.Context()
	assets := make(map[string][]engine.Bar, len(req.Symbols))
	for _, sym := range req.Symbols {
		bars, err := s.clickhouse.Bars(ctx, sym, from, to)
		if err != nil {
			s.logger.Error("Bar query failed", zap.String("symbol", sym), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		assets[sym] = bars
	}

	stratCfg := s.config.Strategy
	if req.StartingCapital > 0 {
		stratCfg.StartingCapital = req.StartingCapital
	}
	strat, err := strategies.New(stratCfg, s.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, combined, err := strat.RunAll(assets)
	if err != nil {
		s.logger.Error("Backtest execution failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	elapsed := time.Since(startTime)
	s.logger.Info("Backtest completed",
		zap.String("request_id", requestID),
		zap.Duration("execution_time", elapsed),
		zap.Int("symbol_count", len(results)),
	)

	c.JSON(http.StatusOK, BacktestResponse{
		RequestID: requestID,
		Combined:  combined,
		Assets:    results,
		ElapsedMs: elapsed.Milliseconds(),
	})
}

func (s *BacktestService) handleHealthCheck(c *gin.Context) {
	status := "healthy"
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.clickhouse.Ping(ctx); err != nil {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
	})
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting backtesting service", zap.String("addr", cfg.Server.Addr))

	service, err := NewBacktestService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create backtest service", zap.Error(err))
	}
	defer service.clickhouse.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	service.setupHTTPRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}
