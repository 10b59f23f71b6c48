// Package mcp hosts the tool-invocation boundary: an MCP server exposing
// the conversational memory operations (and, when supplied, file tools) to
// an LLM client.
package mcp

import (
	"context"
	"fmt"

	"mcp-recall/internal/chroma"
	"mcp-recall/internal/config"
	"mcp-recall/internal/fstools"
	"mcp-recall/internal/journal"
	"mcp-recall/internal/logging"
	"mcp-recall/internal/memory"

	mcpsdk "github.com/fredcamaral/gomcp-sdk"
	"github.com/fredcamaral/gomcp-sdk/server"
)

const (
	serverName    = "mcp-recall"
	serverVersion = "1.0.0"
)

// MemoryServer wires the memory service into an MCP server.
type MemoryServer struct {
	cfg       *config.Config
	service   *memory.Service
	mcpServer *server.Server
	logger    *logging.Logger

	// fsHandler is optional; when nil only memory tools are registered.
	fsHandler   fstools.Handler
	fsValidator fstools.PathValidator
}

// NewMemoryServer builds the server and registers its tools. The vector
// backend is not contacted here; Start performs the bounded handshake.
func NewMemoryServer(cfg *config.Config) (*MemoryServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	logger := logging.NewLogger("mcp")

	store := journal.NewStore(cfg.Memory.Dir)
	index := chroma.NewClient(&cfg.Chroma, logging.NewLogger("chroma"))
	service := memory.NewService(cfg.Memory, store, index, logging.NewLogger("memory"))

	ms := &MemoryServer{
		cfg:       cfg,
		service:   service,
		mcpServer: mcpsdk.NewServer(serverName, serverVersion),
		logger:    logger,
	}
	ms.registerMemoryTools()

	return ms, nil
}

// Start performs the startup handshake with the vector backend. A dead
// backend degrades the service; it never fails the server.
func (ms *MemoryServer) Start(ctx context.Context) error {
	ms.service.Init(ctx)
	ms.logger.Info("memory server started", "vector_backend", string(ms.service.State()))
	return nil
}

// GetMCPServer exposes the underlying MCP server for transport binding.
func (ms *MemoryServer) GetMCPServer() *server.Server {
	return ms.mcpServer
}

// Service exposes the memory service, mainly for the HTTP status facade.
func (ms *MemoryServer) Service() *memory.Service {
	return ms.service
}

// SetFileTools plugs the file-system tool collaborators in.
func (ms *MemoryServer) SetFileTools(handler fstools.Handler, validator fstools.PathValidator) {
	ms.fsHandler = handler
	ms.fsValidator = validator
}
