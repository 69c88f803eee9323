package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddychk/viagoscrap/internal/sched"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one tracking cycle and store the results",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Int64("event-id", 0, "Track a single event by id")
	runCmd.Flags().Bool("all", false, "Track every active event")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	eventID, _ := cmd.Flags().GetInt64("event-id")
	all, _ := cmd.Flags().GetBool("all")
	if (eventID == 0) == !all {
		return fmt.Errorf("specify exactly one of --event-id or --all")
	}

	logger := newLogger()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	tracker := newTracker(st, logger)
	ctx := context.Background()

	if all {
		s := sched.New(st, tracker, logger, cfg.ScrapeIntervalMin, cfg.MaxConcurrent)
		for _, res := range s.RunAll(ctx) {
			printRunResult(res)
		}
		return nil
	}

	event, err := st.GetEvent(eventID)
	if err != nil {
		return fmt.Errorf("load event %d: %w", eventID, err)
	}
	if event == nil {
		return fmt.Errorf("event %d not found", eventID)
	}

	res, err := tracker.RunOnce(ctx, *event)
	if err != nil {
		return fmt.Errorf("tracking cycle: %w", err)
	}
	printRunResult(res)
	return nil
}
