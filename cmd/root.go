package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddychk/viagoscrap/config"
	"github.com/eddychk/viagoscrap/internal/browser"
	"github.com/eddychk/viagoscrap/internal/extract"
	"github.com/eddychk/viagoscrap/internal/notify"
	"github.com/eddychk/viagoscrap/internal/robots"
	"github.com/eddychk/viagoscrap/internal/store"
	"github.com/eddychk/viagoscrap/internal/track"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "viagoscrap",
	Short: "ViagoScrap - Resale ticket price tracker CLI & dashboard",
	Long:  "Track resale ticket listing prices over time, detect drops, and alert subscribers.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	rootCmd.PersistentFlags().Bool("headless", false, "Run the browser headless")
	rootCmd.PersistentFlags().Int("timeout-ms", 0, "Page navigation timeout in milliseconds")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose extraction logging")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if rootCmd.PersistentFlags().Changed("headless") {
		v, _ := rootCmd.PersistentFlags().GetBool("headless")
		cfg.Headless = v
	}
	if v, _ := rootCmd.PersistentFlags().GetInt("timeout-ms"); v > 0 {
		cfg.TimeoutMs = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("debug"); v {
		cfg.ScraperDebug = true
	}
}

// newLogger builds the application logger. Debug mode lowers the level so
// per-selector extraction traces show up.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg.ScraperDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	return st, nil
}

// newExtractor wires the rod browser and robots checker from config.
func newExtractor(logger *slog.Logger) *extract.Extractor {
	ex := extract.New(browser.NewRod(cfg.Headless), logger)
	ex.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	ex.Robots = robots.NewChecker(&http.Client{Timeout: 10 * time.Second}, cfg.RespectRobots)
	return ex
}

func newTracker(st *store.Store, logger *slog.Logger) *track.Tracker {
	return track.New(st, newExtractor(logger), notify.New(cfg.Notify(), logger), logger)
}
