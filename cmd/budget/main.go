package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"budget/internal/amqp"
	"budget/internal/auth"
	"budget/internal/cli"
	"budget/internal/core"
	apphttp "budget/internal/http"
	"budget/internal/ledger"
)

func main() {
	seed := flag.Bool("seed", false, "insert a demo owner with sample transactions and exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg)
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	ledgerSvc := ledger.NewService(store)
	sessions := auth.NewMemorySessionStore(cfg.SessionTTL)
	authSvc := auth.NewService(store, sessions, cfg.BcryptCost)

	if *seed {
		if err := seedDemoData(context.Background(), authSvc, ledgerSvc); err != nil {
			logger.Error("Seeding failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Demo data seeded", "username", "demo")
		return
	}

	// AMQP is optional; without it queued exports report unavailable.
	var queue apphttp.ExportQueue
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		queue = client
		logger.Info("AMQP export queue initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledgerSvc, authSvc, queue, cfg.RateLimitPerMinute)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting budget server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// seedDemoData registers a demo owner with a small, recognizable ledger.
// Seeding only happens when the demo owner does not exist yet; a second run
// is a no-op.
func seedDemoData(ctx context.Context, authSvc *auth.Service, ledgerSvc *ledger.Service) error {
	owner, err := authSvc.Register(ctx, "demo", "demo1234")
	if errors.Is(err, core.ErrUsernameTaken) {
		slog.InfoContext(ctx, "Demo owner already exists, skipping seed", "username", "demo")
		return nil
	}
	if err != nil {
		return err
	}

	for _, tx := range DemoTransactions() {
		if _, err := ledgerSvc.Add(ctx, owner.ID, tx); err != nil {
			return err
		}
	}
	return nil
}

// DemoTransactions is the sample ledger behind --seed.
func DemoTransactions() []core.Transaction {
	return []core.Transaction{
		{Date: core.NewDate(2025, 11, 1), Amount: core.Money{Cents: 250000}, Kind: core.Income, Category: "Salary", Description: "November salary"},
		{Date: core.NewDate(2025, 11, 6), Amount: core.Money{Cents: 4560}, Kind: core.Expense, Category: "Groceries", Description: "Weekly shop"},
		{Date: core.NewDate(2025, 11, 7), Amount: core.Money{Cents: 1250}, Kind: core.Expense, Category: "Transport", Description: "Bus pass top-up"},
		{Date: core.NewDate(2025, 11, 9), Amount: core.Money{Cents: 12000}, Kind: core.Expense, Category: "Utilities", Description: "Electricity bill"},
		{Date: core.NewDate(2025, 11, 15), Amount: core.Money{Cents: 10000}, Kind: core.Income, Category: "Freelance", Description: "Side gig"},
	}
}
