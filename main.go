package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens-engine/pkg/config"
	"github.com/pitchlens/pitchlens-engine/pkg/database"
	"github.com/pitchlens/pitchlens-engine/pkg/handlers"
	"github.com/pitchlens/pitchlens-engine/pkg/llm"
	"github.com/pitchlens/pitchlens-engine/pkg/middleware"
	"github.com/pitchlens/pitchlens-engine/pkg/objectstore"
	"github.com/pitchlens/pitchlens-engine/pkg/pdf"
	"github.com/pitchlens/pitchlens-engine/pkg/repositories"
	"github.com/pitchlens/pitchlens-engine/pkg/retry"
	"github.com/pitchlens/pitchlens-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)),
		zap.Bool("object_store", cfg.ObjectStore.Enabled),
	)

	ctx := context.Background()

	// Connect to PostgreSQL, retrying while the database comes up
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// LLM client for assumption extraction
	client, err := newCompletionClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create completion client", zap.Error(err))
	}

	// Optional archival of uploaded originals
	var archiver services.ObjectArchiver
	if cfg.ObjectStore.Enabled {
		store, err := objectstore.New(&cfg.ObjectStore, logger)
		if err != nil {
			logger.Fatal("Failed to create object store client", zap.Error(err))
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Fatal("Failed to ensure object store bucket", zap.Error(err))
		}
		archiver = store
	}

	// Wire repositories, services, and handlers
	deckRepo := repositories.NewDeckRepository(db)
	assumptionRepo := repositories.NewAssumptionRepository(db)
	extractor := pdf.NewExtractor(cfg.Upload.MinTextChars, logger)
	extractionSvc := services.NewExtractionService(client, cfg.LLM.StrictResponseShape, logger)
	analysisSvc := services.NewAnalysisService(deckRepo, assumptionRepo, extractionSvc, logger)
	deckSvc := services.NewDeckService(deckRepo, assumptionRepo, extractor, analysisSvc, archiver, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDeckHandler(deckSvc, cfg.Upload.MaxFileBytes, logger).RegisterRoutes(mux)

	// Serve static UI files from ui/dist
	fs := http.FileServer(http.Dir("./ui/dist"))
	mux.Handle("/", fs)

	handler := middleware.Recovery(logger)(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting pitchlens-engine",
			zap.String("addr", addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Block until interrupted, then drain in-flight requests. Background
	// analyses run on their own contexts and are not interrupted here; an
	// abrupt kill leaves decks in status analyzing.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newLogger builds the process logger: human-readable in local development,
// JSON in deployed environments.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runMigrations applies pending schema migrations via database/sql, which
// golang-migrate requires.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger)
}

// newCompletionClient selects the LLM client implementation by provider.
func newCompletionClient(cfg *config.Config, logger *zap.Logger) (llm.CompletionClient, error) {
	llmCfg := &llm.Config{
		Endpoint:            cfg.LLM.Endpoint,
		Model:               cfg.LLM.Model,
		APIKey:              cfg.LLM.APIKey,
		MaxCompletionTokens: cfg.LLM.MaxCompletionTokens,
		Temperature:         cfg.LLM.Temperature,
	}

	switch cfg.LLM.Provider {
	case "anthropic":
		return llm.NewAnthropicClient(llmCfg, logger)
	default:
		return llm.NewClient(llmCfg, logger)
	}
}
