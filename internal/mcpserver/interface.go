// Package mcpserver exposes devices, transcription, summaries and session
// history as Model Context Protocol tools over stdio.
package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
)

type Server interface {
	// Serve speaks MCP on in/out until ctx is cancelled or in is closed.
	Serve(ctx context.Context, in io.Reader, out io.Writer) error
	MCP() *server.MCPServer
}
