// liftcamp-mcp exposes the training program data over MCP stdio, for use
// from MCP-capable clients. It connects straight to the database and reuses
// the same service layer as the HTTP server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/liftcamp/internal/config"
	liftmcp "github.com/claude/liftcamp/internal/mcp"
	"github.com/claude/liftcamp/internal/service"
	"github.com/claude/liftcamp/internal/storage"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	// Logs go to stderr; stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := service.New(db, nil, cfg.Program, log)
	s := liftmcp.New(svc, Version, log)

	log.Info("MCP server starting on stdio", "version", Version)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
