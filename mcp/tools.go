package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eddychk/viagoscrap/internal/store"
	"github.com/eddychk/viagoscrap/internal/track"
)

type toolDeps struct {
	store   *store.Store
	tracker *track.Tracker
}

func registerTools(s *server.MCPServer, st *store.Store, tr *track.Tracker) {
	d := &toolDeps{store: st, tracker: tr}

	// list_events
	listTool := mcp.NewTool("list_events",
		mcp.WithDescription("List tracked events with their lowest recorded price"),
	)
	s.AddTool(listTool, d.handleListEvents)

	// add_event
	addTool := mcp.NewTool("add_event",
		mcp.WithDescription("Register a resale listings page for price tracking"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Human-readable event name"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Listings page URL"),
		),
	)
	s.AddTool(addTool, d.handleAddEvent)

	// scrape_event
	scrapeTool := mcp.NewTool("scrape_event",
		mcp.WithDescription("Run one tracking cycle for an event and store the prices found"),
		mcp.WithNumber("event_id",
			mcp.Required(),
			mcp.Description("Tracked event id"),
		),
	)
	s.AddTool(scrapeTool, d.handleScrapeEvent)

	// price_history
	historyTool := mcp.NewTool("price_history",
		mcp.WithDescription("Get recorded price history rows for an event, newest first"),
		mcp.WithNumber("event_id",
			mcp.Required(),
			mcp.Description("Tracked event id"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows (default: 100)"),
		),
	)
	s.AddTool(historyTool, d.handlePriceHistory)
}

func (d *toolDeps) handleListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := d.store.ListEvents()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(events, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (d *toolDeps) handleAddEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	url := request.GetString("url", "")
	if name == "" || url == "" {
		return mcp.NewToolResultError("name and url are required"), nil
	}

	id, err := d.store.UpsertEvent(name, url, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store error: %v", err)), nil
	}

	event, err := d.store.GetEvent(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(event, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (d *toolDeps) handleScrapeEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID := int64(request.GetInt("event_id", 0))
	if eventID == 0 {
		return mcp.NewToolResultError("event_id is required"), nil
	}

	event, err := d.store.GetEvent(eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store error: %v", err)), nil
	}
	if event == nil {
		return mcp.NewToolResultError(fmt.Sprintf("event %d not found", eventID)), nil
	}

	result, err := d.tracker.RunOnce(ctx, *event)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tracking error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (d *toolDeps) handlePriceHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID := int64(request.GetInt("event_id", 0))
	if eventID == 0 {
		return mcp.NewToolResultError("event_id is required"), nil
	}
	limit := request.GetInt("limit", 100)

	rows, err := d.store.HistorySeries(eventID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}
