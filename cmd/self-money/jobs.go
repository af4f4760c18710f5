package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nisioka/self-money/internal/config"
	"github.com/nisioka/self-money/internal/model"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and enqueue background jobs",
	}
	cmd.AddCommand(jobsListCmd())
	cmd.AddCommand(jobsEnqueueCmd())
	return cmd
}

func jobsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			limit, _ := cmd.Flags().GetInt("limit")
			jobs, err := store.GetRecentJobs(ctx, limit)
			if err != nil {
				return err
			}

			for i := range jobs {
				job := &jobs[i]
				line := fmt.Sprintf("%s  %-16s %-10s %s", job.CreatedAt.Format("2006-01-02 15:04:05"), job.Type, job.Status, job.ID)
				if job.ErrorMessage != "" {
					line += "  " + job.ErrorMessage
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "number of jobs to show")
	return cmd
}

func jobsEnqueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Enqueue a scrape job for the worker to pick up",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			accountID, _ := cmd.Flags().GetInt64("account")

			var job *model.Job
			if accountID > 0 {
				job, err = store.CreateJob(ctx, model.JobTypeScrapeSpecific, &accountID)
			} else {
				job, err = store.CreateJob(ctx, model.JobTypeScrapeAll, nil)
			}
			if err != nil {
				return err
			}

			fmt.Printf("enqueued %s job %s\n", job.Type, job.ID)
			return nil
		},
	}
	cmd.Flags().Int64("account", 0, "target a single account id")
	return cmd
}
