package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nisioka/self-money/internal/api"
	"github.com/nisioka/self-money/internal/classifier"
	"github.com/nisioka/self-money/internal/config"
	"github.com/nisioka/self-money/internal/jobs"
	"github.com/nisioka/self-money/internal/scraper"
	"github.com/nisioka/self-money/internal/scraper/scrapers"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, job worker, and scheduler",
		Long: `Start the long-running process: the HTTP API, the background job
worker that executes scrape jobs one at a time, and the cron scheduler
that enqueues a nightly scrape of every account.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ServerAddr = addr
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	logger := slog.Default()

	var opts []classifier.Option
	opts = append(opts, classifier.WithFallbackCategory(cfg.FallbackCategory))
	if cfg.Gemini.APIKey != "" {
		gemini, geminiErr := classifier.NewGeminiClient(classifier.GeminiConfig{
			APIKey:            cfg.Gemini.APIKey,
			Model:             cfg.Gemini.Model,
			RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		}, logger)
		if geminiErr != nil {
			return geminiErr
		}
		defer gemini.Close()
		opts = append(opts, classifier.WithAIClient(gemini))
	} else {
		logger.Warn("no gemini api key configured, AI classification disabled")
	}

	cls := classifier.New(store, logger, opts...)
	defer cls.Close()

	registry := scraper.NewRegistry()
	registry.Register(scrapers.NewRakutenBank(nil))
	registry.Register(scrapers.NewSMBC(nil))

	orchestrator := scraper.NewService(store, cls, registry, logger)
	executor := scraper.NewExecutor(orchestrator, logger)

	worker := jobs.NewWorker(store, executor, cfg.PollInterval)
	worker.Start(ctx)
	defer worker.Stop()

	scheduler := jobs.NewScheduler(store, cfg.CronExpression)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	logger.Info("starting",
		"addr", cfg.ServerAddr,
		"cron", scheduler.CronExpression(),
		"scrapers", registry.Names())

	server := api.NewServer(api.Config{Addr: cfg.ServerAddr}, store, scheduler, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}
