// server is the mcp-recall binary. It exposes the conversational memory
// tools over MCP stdio (the default) or over HTTP with a small status
// facade.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mcp-recall/internal/config"
	"mcp-recall/internal/mcp"

	"github.com/fredcamaral/gomcp-sdk/protocol"
	"github.com/fredcamaral/gomcp-sdk/server"
	"github.com/fredcamaral/gomcp-sdk/transport"
	"github.com/gorilla/mux"
)

func main() {
	var (
		mode = flag.String("mode", "stdio", "Server mode: stdio or http")
		addr = flag.String("addr", "", "HTTP listen address (overrides configuration)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	memoryServer, err := mcp.NewMemoryServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create memory server: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := memoryServer.Start(ctx); err != nil {
		log.Fatalf("Failed to start memory server: %v", err)
	}

	switch *mode {
	case "stdio":
		mcpServer := memoryServer.GetMCPServer()
		mcpServer.SetTransport(transport.NewStdioTransport())
		if err := mcpServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("MCP server failed: %v", err)
		}

	case "http":
		if err := runHTTPServer(ctx, cfg, memoryServer); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("HTTP server failed: %v", err)
		}

	default:
		log.Fatalf("Invalid mode: %s. Use 'stdio' or 'http'", *mode)
	}
}

func runHTTPServer(ctx context.Context, cfg *config.Config, memoryServer *mcp.MemoryServer) error {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/v1/status", handleStatus(memoryServer)).Methods(http.MethodGet)
	router.HandleFunc("/mcp", handleMCP(memoryServer.GetMCPServer())).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving MCP over HTTP on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleStatus(memoryServer *mcp.MemoryServer) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(memoryServer.Service().Status())
	}
}

func handleMCP(mcpServer *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.JSONRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		resp := mcpServer.HandleRequest(r.Context(), &req)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("Error encoding response: %v", err)
		}
	}
}
