package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hourbot/bithumb-trader/internal/clock"
	"github.com/hourbot/bithumb-trader/internal/config"
	"github.com/hourbot/bithumb-trader/internal/exchange"
	"github.com/hourbot/bithumb-trader/internal/livetrading"
	"github.com/hourbot/bithumb-trader/internal/logging"
	"github.com/hourbot/bithumb-trader/internal/metrics"
	"github.com/hourbot/bithumb-trader/internal/notifier"
	"github.com/hourbot/bithumb-trader/internal/strategy"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogFile)
	defer logger.Sync()

	var ntf notifier.Notifier = notifier.NewNoop()
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		ntf = notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	}

	ex := exchange.NewBithumbExchange(cfg.AccessKey, cfg.SecretKey)
	eng := strategy.New(strategy.Config{
		Market:        cfg.Market,
		TakeProfitPct: cfg.TakeProfitPct,
		BaseAmount:    cfg.BaseOrderKRW,
		FeeRate:       cfg.FeeRate,
		SizingMode:    strategy.SizingMode(cfg.SizingMode),
		OrderWait:     cfg.OrderWait,
	}, ex, clock.New(), logger, ntf)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorw("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		logger.Infow("metrics server started", "addr", cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infow("trading loop starting",
		"market", cfg.Market,
		"interval", cfg.Interval,
		"take_profit_pct", cfg.TakeProfitPct,
		"base_order_krw", cfg.BaseOrderKRW,
		"sizing_mode", cfg.SizingMode,
	)
	livetrading.Run(ctx, cfg.Interval, clock.New(), logger, eng)
	logger.Infow("trading loop stopped")
}
