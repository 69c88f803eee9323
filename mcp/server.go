package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/eddychk/viagoscrap/internal/store"
	"github.com/eddychk/viagoscrap/internal/track"
)

// Serve starts the MCP stdio server with all tools registered.
func Serve(st *store.Store, tr *track.Tracker) error {
	s := server.NewMCPServer(
		"viagoscrap",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, st, tr)

	return server.ServeStdio(s)
}
