// Package main provides the CLI entry point for feedwatch.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lepinkainen/feedwatch/internal/api"
	"github.com/lepinkainen/feedwatch/internal/config"
	"github.com/lepinkainen/feedwatch/internal/fetcher"
	"github.com/lepinkainen/feedwatch/internal/monitor"
	"github.com/lepinkainen/feedwatch/internal/store"
	"github.com/lepinkainen/feedwatch/pkg/database"
	"github.com/lepinkainen/feedwatch/pkg/filesystem"
	"github.com/lepinkainen/feedwatch/pkg/preview"
)

// CLI structure
var CLI struct {
	Config string `help:"Configuration file path" default:"config.yaml"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Serve struct {
		Addr string `help:"Listen address override (e.g., :8000)"`
	} `cmd:"serve" help:"Run the feed monitor and HTTP API."`

	Results struct {
		Limit    int    `help:"Maximum number of results to load" default:"100"`
		Keywords string `help:"Comma-separated keyword filters (OR logic)"`
	} `cmd:"results" help:"Browse stored results interactively."`

	InitDB struct{} `cmd:"init-db" help:"Create the database schema and exit."`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Configure logging level based on debug flag
	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "serve":
		serve(cfg)
	case "results":
		browseResults(cfg)
	case "init-db":
		db := openDatabase(cfg)
		defer func() { _ = db.Close() }()
		slog.Info("Database schema initialized", "path", cfg.Database.Path)
	default:
		panic(ctx.Command())
	}
}

// openDatabase opens the configured SQLite database and ensures the schema.
func openDatabase(cfg *config.Config) *database.Database {
	if err := filesystem.EnsureDirectoryExists(cfg.Database.Path); err != nil {
		slog.Error("Failed to create database directory", "error", err)
		os.Exit(1)
	}

	dbConfig := database.DefaultConfig()
	dbConfig.Path = cfg.Database.Path
	db, err := database.NewDatabase(dbConfig)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}

	if err := database.InitializeSchema(db); err != nil {
		slog.Error("Failed to initialize schema", "error", err)
		os.Exit(1)
	}
	return db
}

// serve runs the monitor and the HTTP API until interrupted.
func serve(cfg *config.Config) {
	db := openDatabase(cfg)
	defer func() { _ = db.Close() }()

	st := store.New(db, cfg.Monitor.SummaryMaxLength)
	f := fetcher.New(time.Duration(cfg.Monitor.FetchTimeoutSeconds) * time.Second)
	mon := monitor.New(st, f, time.Duration(cfg.Monitor.DefaultIntervalMinutes)*time.Minute)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Start(ctx); err != nil {
		slog.Error("Failed to start feed monitor", "error", err)
		os.Exit(1)
	}
	defer mon.Stop()

	addr := cfg.Server.Addr
	if CLI.Serve.Addr != "" {
		addr = CLI.Serve.Addr
	}

	server := api.NewServer(st, mon, cfg.Monitor.DefaultIntervalMinutes)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		slog.Info("HTTP API listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
}

// browseResults opens the interactive TUI over the newest stored results.
func browseResults(cfg *config.Config) {
	db := openDatabase(cfg)
	defer func() { _ = db.Close() }()

	st := store.New(db, cfg.Monitor.SummaryMaxLength)

	var filters []string
	if CLI.Results.Keywords != "" {
		filters = splitKeywords(CLI.Results.Keywords)
	}

	limit := CLI.Results.Limit
	if limit < 1 || limit > 100 {
		limit = 100
	}

	page, err := st.QueryResults(context.Background(), 1, limit, filters)
	if err != nil {
		slog.Error("Failed to load results", "error", err)
		os.Exit(1)
	}

	if err := preview.Run(page.Items); err != nil {
		slog.Error("Preview failed", "error", err)
		os.Exit(1)
	}
}

// splitKeywords splits a comma-separated keyword list, dropping empty parts.
func splitKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
