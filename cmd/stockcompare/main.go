package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"StockCompare/internal/chart"
	"StockCompare/internal/collector"
	"StockCompare/internal/config"
	"StockCompare/internal/recorder"
	"StockCompare/internal/report"
	"StockCompare/internal/session"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger, err := createLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.Provider {
	case "financego":
		fetcher = collector.NewFinanceGoFetcher(logger)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.Timeout(), logger)
	}
	logger.Info("data source selected", zap.String("provider", fetcher.Name()))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Journal.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Journal.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	plt := &chart.Plotter{
		Output: cfg.Chart.Output,
		Width:  cfg.Chart.WidthIn,
		Height: cfg.Chart.HeightIn,
		Open:   cfg.Chart.Open,
		Out:    os.Stdout,
		Logger: logger,
	}

	s := session.New(os.Stdin, os.Stdout,
		collector.NewSymbolValidator(fetcher, logger),
		collector.NewCollector(fetcher, logger),
		&report.Console{W: os.Stdout},
		plt,
	)
	s.Recorder = rec
	s.Logger = logger
	s.ChartPath = cfg.Chart.Output

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		logger.Error("session ended with error", zap.Error(err), zap.Stringer("state", s.State()))
		rec.Close()
		logger.Sync()
		os.Exit(1)
	}
}

// createLogger builds a console logger writing to stderr so it never mixes
// with the prompts on stdout.
func createLogger(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	config := zap.Config{
		Level:             zapLevel,
		Development:       false,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     zap.NewDevelopmentEncoderConfig(),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	return config.Build()
}
