package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"biscabot/config"
	"biscabot/internal"
	"biscabot/internal/clients"
	"biscabot/internal/journal"
	"biscabot/internal/metrics"
	"biscabot/internal/services/offerer"
	"biscabot/internal/services/trader"
	"biscabot/internal/services/wallet"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	// Only the buy account holds confirmation authority; the sell account
	// is query-only.
	buySession := clients.NewBiscointClient(clients.BiscointConfig{
		APIKey:     cfg.BuyAPIKey,
		APISecret:  cfg.BuyAPISecret,
		BaseURL:    cfg.APIBaseURL,
		CanConfirm: true,
	}, logger.Named("buy"))
	sellSession := clients.NewBiscointClient(clients.BiscointConfig{
		APIKey:    cfg.SellAPIKey,
		APISecret: cfg.SellAPISecret,
		BaseURL:   cfg.APIBaseURL,
	}, logger.Named("sell"))

	jrnl, err := journal.New(cfg.JournalDir, logger)
	if err != nil {
		logger.Fatal("failed to open journal", zap.Error(err))
	}
	defer jrnl.Close()

	executor, err := trader.NewExecutor(buySession, logger)
	if err != nil {
		logger.Fatal("failed to create trade executor", zap.Error(err))
	}

	bot := internal.NewTradingBot(
		offerer.NewEngine(buySession, sellSession, logger),
		executor,
		wallet.NewTracker(buySession, logger),
		buySession,
		jrnl,
		logger,
		cfg.Simulation,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Serve(ctx, cfg.MetricsAddr, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx)
	})

	logger.Info("started", zap.Bool("simulation", cfg.Simulation))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stopped with error", zap.Error(err))
		return
	}
	logger.Info("stopped")
}
