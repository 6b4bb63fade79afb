package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/tgienger/taskdeck/internal/config"
	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/logging"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/tasks"
	"github.com/tgienger/taskdeck/internal/ui"
	"github.com/tgienger/taskdeck/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskdeck %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// Initialize database
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	var gw gateway.Gateway
	switch cfg.Backend {
	case config.BackendLocal:
		gw = gateway.NewLocal(database)
	case config.BackendHTTP:
		gw = gateway.NewHTTP(cfg.APIURL, database)
	default:
		gw = gateway.NewMemory(cfg.MockLatency)
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing REDIS_URL: %v\n", err)
			os.Exit(1)
		}
		rc := redis.NewClient(opts)
		defer rc.Close()
		gw = gateway.NewCache(gw, rc, cfg.CacheTTL, logger)
	}
	logger.WithField("backend", cfg.Backend).WithField("cache", cfg.RedisURL != "").Info("starting taskdeck")

	deps := views.Deps{
		Gateway:  gw,
		Session:  session.New(gw, database, logger),
		Settings: database,
		Timeout:  cfg.RequestTimeout,
		Sort:     tasks.SortOptions{MissingDueLast: cfg.MissingDueLast, Locale: cfg.Locale},
		Logger:   logger,
	}

	// Create and run the application
	app := ui.NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
