package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
	"github.com/nguyentantai21042004/lesson-recorder/internal/transcriber"
)

const (
	serverName    = "lesson-recorder"
	serverVersion = "1.0.0"
)

// Deps are the components behind the tools. Catalog may be nil.
type Deps struct {
	Devices       devices.Lister
	Transcriber   transcriber.Transcriber
	NewSummarizer processor.SummarizerFactory
	Catalog       catalog.Catalog
}

type implServer struct {
	cfg           *config.Config
	devices       devices.Lister
	transcriber   transcriber.Transcriber
	newSummarizer processor.SummarizerFactory
	catalog       catalog.Catalog
	logger        logger.Logger
	mcp           *server.MCPServer
}

// New creates the MCP server and registers its tools. log must not write to stdout.
func New(cfg *config.Config, deps Deps, log logger.Logger) Server {
	s := &implServer{
		cfg:           cfg,
		devices:       deps.Devices,
		transcriber:   deps.Transcriber,
		newSummarizer: deps.NewSummarizer,
		catalog:       deps.Catalog,
		logger:        log,
	}
	s.mcp = server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

func (s *implServer) MCP() *server.MCPServer {
	return s.mcp
}
