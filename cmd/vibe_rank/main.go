package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/vibe-rank/api"
	"github.com/gcbaptista/vibe-rank/config"
	"github.com/gcbaptista/vibe-rank/internal/cache"
	"github.com/gcbaptista/vibe-rank/internal/jobs"
	"github.com/gcbaptista/vibe-rank/internal/logger"
	"github.com/gcbaptista/vibe-rank/internal/phrases"
	"github.com/gcbaptista/vibe-rank/internal/rank"
)

const (
	version          = "1.0.0"
	snapshotFileName = "phrases.gob"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	// Define command-line flags
	var (
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
		configFile = flag.String("config", "", "Path to a YAML config file (default: ./config.yaml or ./configs/config.yaml)")
		port       = flag.String("port", "", "Port to run the server on (overrides config)")
		dataDir    = flag.String("data-dir", "", "Directory for phrase table snapshots (overrides config)")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("Vibe Rank - trending phrase ranking service\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment variables use the %s_ prefix, e.g. %s_REDIS_ADDRESS=localhost:6379\n", config.EnvPrefix, config.EnvPrefix)
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                          # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000              # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --config vibe.yaml       # Load settings from a file\n", os.Args[0])
		return
	}

	// Handle version flag
	if *showVer {
		fmt.Printf("Vibe Rank v%s\n", version)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dataDir != "" {
		cfg.Server.DataDir = *dataDir
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Server stopped with error", nil)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	snapshotPath := filepath.Join(cfg.Server.DataDir, snapshotFileName)

	table := phrases.NewDefaultTable()
	switch err := table.LoadSnapshot(snapshotPath); {
	case err == nil:
		log.Info("Loaded phrase table snapshot", map[string]interface{}{"path": snapshotPath, "phrases": table.Len()})
	case errors.Is(err, os.ErrNotExist):
		log.Info("No snapshot found, using seed phrases", map[string]interface{}{"phrases": table.Len()})
	default:
		log.WithError(err).Warn("Failed to load snapshot, using seed phrases", map[string]interface{}{"path": snapshotPath})
	}

	deps := api.Dependencies{
		Scorer:  rank.DefaultScorer,
		Phrases: table,
		Ranking: cfg.Ranking,
		Logger:  log,
	}

	rerankOpts := jobs.RerankerOptions{
		SnapshotPath: snapshotPath,
		Logger:       log,
	}
	if cfg.CacheEnabled() {
		rankCache := cache.New(cache.Options{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.CacheTTL,
		})
		defer func() { _ = rankCache.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rankCache.Ping(pingCtx)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, serving without cache", map[string]interface{}{"address": cfg.Redis.Address})
		} else {
			log.Info("Top-N cache enabled", map[string]interface{}{"address": cfg.Redis.Address, "ttl": cfg.Redis.CacheTTL.String()})
			deps.Cache = rankCache
			rerankOpts.Cache = rankCache
		}
	}

	manager := jobs.NewManager(cfg.Jobs.MaxWorkers, log)
	manager.Start(cfg.Jobs.RetentionAfter)
	defer manager.Stop()

	deps.Jobs = manager
	deps.Reranker = jobs.NewReranker(manager, table, rank.DefaultScorer, rerankOpts)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(log),
		api.CORSMiddleware(),
		api.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize),
	)
	api.SetupRoutes(router, deps)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", map[string]interface{}{"port": cfg.Server.Port, "version": version})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	finalSnapshot(manager, table, snapshotPath, log)
	log.Info("Graceful shutdown complete", nil)
	return nil
}

// finalSnapshot stops the job manager, so no re-rank is mid-flight, then persists the table
func finalSnapshot(manager *jobs.Manager, table *phrases.Table, path string, log logger.Logger) {
	manager.Stop()
	if err := table.SaveSnapshot(path); err != nil {
		log.WithError(err).Warn("Failed to write final snapshot", map[string]interface{}{"path": path})
	}
}
