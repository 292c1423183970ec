package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"quotebot/params"
	"quotebot/pkg/api"
	"quotebot/pkg/harness"
	"quotebot/pkg/strategy"
	"quotebot/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	level := zapcore.InfoLevel
	if os.Getenv("VERBOSE") == "true" {
		level = zapcore.DebugLevel
	}

	var logger *zap.Logger
	if cfg.Run.LogFile != "" {
		logger, err = util.NewLoggerWithFile(cfg.Run.LogFile, level)
	} else {
		logger, err = util.NewLogger(level)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	quoting := strategy.Params{
		Spread:       cfg.Quoting.Spread,
		SkewFactor:   cfg.Quoting.SkewFactor,
		DefaultPrice: cfg.Quoting.DefaultPrice,
		BaseSize:     cfg.Quoting.BaseSize,
	}
	if len(cfg.Quoting.Disabled) > 0 {
		quoting.Disabled = make(map[string]bool, len(cfg.Quoting.Disabled))
		for _, t := range cfg.Quoting.Disabled {
			quoting.Disabled[t] = true
		}
	}

	maker := strategy.NewMarketMaker(cfg.Quoting.BotName, cfg.Instruments, quoting, sugar)

	sugar.Infow("quotebot_start",
		"bot", cfg.Quoting.BotName,
		"instruments", len(cfg.Instruments),
		"spread", cfg.Quoting.Spread,
		"skew_factor", cfg.Quoting.SkewFactor,
	)

	// Status API is optional; it only reads ledger snapshots.
	if cfg.Run.StatusAddr != "" {
		statusSrv := api.NewServer(maker, sugar)
		go func() {
			if err := statusSrv.Start(cfg.Run.StatusAddr); err != nil {
				sugar.Errorw("status_api_failed", "err", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := harness.NewClient(cfg.Run.HarnessURL, sugar)
	if err := client.Run(ctx, maker); err != nil {
		sugar.Fatalw("session_failed", "err", err)
	}

	turns, _ := maker.Stats()
	sugar.Infow("quotebot_done", "turns", turns, "positions", maker.Positions())
}
