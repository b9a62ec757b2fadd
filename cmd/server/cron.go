package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var forceRun bool

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Run the content-generation schedule once",
	Long: `cron generates blog posts if the schedule is enabled and due, then exits.
Point a system scheduler (cron, a systemd timer, a platform job) at it.
The exit code is 1 when the run failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Generated posts carry no uploaded media, so no storage is needed.
		c, err := newCore(cfg, log, nil)
		if err != nil {
			return err
		}
		res, err := c.scheduler.Run(ctx, forceRun)
		if err != nil {
			return fmt.Errorf("content generation failed: %w", err)
		}
		if !res.Ran {
			log.Info("Nothing to do: " + res.Reason)
			return nil
		}
		log.Info(fmt.Sprintf("Generated %d post(s)", len(res.Generated)))
		if len(res.Failed) > 0 {
			log.Warn("Skipped topics: " + strings.Join(res.Failed, ", "))
		}
		return nil
	},
}

func init() {
	cronCmd.Flags().BoolVar(&forceRun, "force", false, "run even if the schedule is disabled or not due")
}
