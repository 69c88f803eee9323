package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddychk/viagoscrap/internal/sched"
	"github.com/eddychk/viagoscrap/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard, API and background scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8000)")
	serveCmd.Flags().Bool("no-scheduler", false, "Serve the dashboard without periodic scraping")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	tracker := newTracker(st, logger)
	scheduler := sched.New(st, tracker, logger, cfg.ScrapeIntervalMin, cfg.MaxConcurrent)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	noScheduler, _ := cmd.Flags().GetBool("no-scheduler")
	if !noScheduler {
		go scheduler.Run(ctx)
	}

	srv := &web.Server{
		Store:                st,
		Tracker:              tracker,
		Sched:                scheduler,
		Logger:               logger,
		DBPath:               cfg.DBPath,
		Headless:             cfg.Headless,
		ScraperDebug:         cfg.ScraperDebug,
		NotificationsEnabled: cfg.NotificationsEnabled(),
	}
	app := srv.App()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	addr := fmt.Sprintf(":%s", port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
