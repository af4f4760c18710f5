package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nisioka/self-money/internal/classifier"
	"github.com/nisioka/self-money/internal/config"
	"github.com/nisioka/self-money/internal/scraper"
	"github.com/nisioka/self-money/internal/scraper/scrapers"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [account-id]",
		Short: "Scrape accounts immediately",
		Long: `Run a scrape in the foreground, without going through the job queue.
With no argument every credentialed account is scraped; with an account
id only that account is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSync,
	}
	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
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
	}

	cls := classifier.New(store, logger, opts...)
	defer cls.Close()

	registry := scraper.NewRegistry()
	registry.Register(scrapers.NewRakutenBank(nil))
	registry.Register(scrapers.NewSMBC(nil))

	orchestrator := scraper.NewService(store, cls, registry, logger)

	if len(args) == 1 {
		accountID, parseErr := strconv.ParseInt(args[0], 10, 64)
		if parseErr != nil {
			return fmt.Errorf("invalid account id %q", args[0])
		}

		summary, scrapeErr := orchestrator.ScrapeAccount(ctx, accountID)
		if scrapeErr != nil {
			return scrapeErr
		}
		fmt.Printf("%s: %d added, %d skipped, balance %d\n",
			summary.AccountName, summary.TransactionsAdded, summary.TransactionsSkipped, summary.NewBalance)
		return nil
	}

	summaries, accountErrs, err := orchestrator.ScrapeAllAccounts(ctx)
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		fmt.Printf("%s: %d added, %d skipped, balance %d\n",
			summary.AccountName, summary.TransactionsAdded, summary.TransactionsSkipped, summary.NewBalance)
	}
	for i := range accountErrs {
		fmt.Printf("failed: %s\n", accountErrs[i].Error())
	}
	if len(summaries) == 0 && len(accountErrs) > 0 {
		return fmt.Errorf("all accounts failed to scrape")
	}
	return nil
}
