package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage tracked events",
}

var eventsAddCmd = &cobra.Command{
	Use:   "add [name] [url]",
	Short: "Register a listings page for price tracking",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventsAdd,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked events with their price summary",
	RunE:  runEventsList,
}

func init() {
	eventsAddCmd.Flags().Bool("paused", false, "Register without activating")
	eventsListCmd.Flags().String("format", "table", "Output format: json, table")
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsListCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsAdd(cmd *cobra.Command, args []string) error {
	name, url := args[0], args[1]
	paused, _ := cmd.Flags().GetBool("paused")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.UpsertEvent(name, url, !paused)
	if err != nil {
		return fmt.Errorf("add event: %w", err)
	}
	fmt.Fprintf(os.Stdout, "event %d: %s\n", id, name)
	return nil
}

func runEventsList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.ListEvents()
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(events)
	default:
		printEventsTable(events)
	}
	return nil
}
