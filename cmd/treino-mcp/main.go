// Command treino-mcp bridges the Treinos workout account to MCP clients
// over stdio. It reuses the CLI's config, session token, and REST client.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/guissxs/treinocli/internal/api"
	"github.com/guissxs/treinocli/internal/config"
	"github.com/guissxs/treinocli/internal/mcp"
	"github.com/guissxs/treinocli/internal/session"
	"github.com/guissxs/treinocli/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	readOnly := flag.Bool("read-only", false, "register only the read tools")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("treino-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("treino-mcp starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.Data.Dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout())
	guard := session.NewGuard(db)

	srv := mcp.New(client, guard, Version, *readOnly || cfg.MCP.ReadOnly, log)

	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
	log.Info("mcp server stopped")
}
