package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/eddychk/viagoscrap/internal/models"
)

// printListingsTable prints listings in a human-friendly card layout.
func printListingsTable(listings []models.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(os.Stdout, "No listings found.")
		return
	}
	for i, l := range listings {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, " %d. %s\n", i+1, truncate(l.Title, 80))
		line := "    Price: " + l.PriceRaw
		if l.DateLabel != "" {
			line += "  |  Date: " + l.DateLabel
		}
		fmt.Fprintln(os.Stdout, line)
		if l.URL != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", l.URL)
		}
	}
}

// printEventsTable prints tracked events one per line with their cached
// price summary.
func printEventsTable(events []models.TrackedEvent) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "No tracked events.")
		return
	}
	for _, e := range events {
		status := "active"
		if !e.Active {
			status = "paused"
		}
		low := "-"
		if e.LowestPriceRaw != nil {
			low = *e.LowestPriceRaw
		}
		last := "-"
		if e.LastScrapedAt != nil {
			last = *e.LastScrapedAt
		}
		fmt.Fprintf(os.Stdout, " %3d  %-8s  min=%-14s  last=%-24s  %s\n",
			e.ID, status, low, last, truncate(e.Name, 48))
		fmt.Fprintf(os.Stdout, "      %s\n", e.URL)
	}
}

// printRunResult prints one tracking cycle outcome.
func printRunResult(r models.RunResult) {
	line := fmt.Sprintf("event %d: %s, found=%d saved=%d", r.EventID, r.Status, r.ItemsFound, r.ItemsSaved)
	if r.MinPriceFound != nil {
		line += fmt.Sprintf(" min=%.2f", *r.MinPriceFound)
	}
	if r.Error != "" {
		line += "  (" + r.Error + ")"
	}
	fmt.Fprintln(os.Stdout, line)
	if r.Alert != nil {
		if r.Alert.Sent {
			fmt.Fprintf(os.Stdout, "  alert sent via %s to %s\n", r.Alert.Provider, strings.Join(r.Alert.Recipients, ", "))
		} else {
			fmt.Fprintf(os.Stdout, "  alert not sent: %s\n", r.Alert.Reason)
		}
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
