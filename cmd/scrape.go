package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddychk/viagoscrap/internal/ui"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Extract listings from a page once, without storing anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	pageURL := args[0]
	format, _ := cmd.Flags().GetString("format")

	logger := newLogger()
	ex := newExtractor(logger)

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Extracting listings from %s...", pageURL))
	ctx := ui.WithProgress(context.Background(), spin.Update)
	listings, err := ex.Extract(ctx, pageURL)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	switch format {
	case "table":
		printListingsTable(listings)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(listings)
	}

	return nil
}
