package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"mosaic/internal/config"
	"mosaic/internal/handler"
	"mosaic/internal/middleware"
	"mosaic/internal/repository/postgres"
	"mosaic/internal/service"
	"mosaic/internal/storage"
)

// maxLogFiles caps how many rotated log files LOG_DIR may accumulate.
const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Load volume registry from YAML
	volumes, err := storage.LoadRegistry(ctx, cfg.VolumesFile)
	if err != nil {
		log.Fatalf("Failed to load volume registry: %v", err)
	}
	logger.Info("volumes loaded", "count", len(volumes.All()))

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	assetRepo := postgres.NewAssetRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	clock := service.RealClock{}
	assetPersister := service.NewAssetPersister(assetRepo, folderRepo, volumes, logger)
	pathResolver := service.NewPathResolver(folderRepo, txManager, volumes, logger)
	folderService := service.NewFolderService(folderRepo, assetRepo, txManager, volumes, assetPersister, logger)
	treeService := service.NewTreeService(folderRepo, logger)
	filenameResolver := service.NewFilenameResolver(folderRepo, assetRepo, volumes, clock, logger)
	tempFolderService := service.NewTempFolderService(folderRepo, pathResolver, volumes, cfg, clock, logger)

	// Create handlers
	folderHandler := handler.NewFolderHandler(
		folderService, pathResolver, filenameResolver, tempFolderService, volumes, logger,
	)
	treeHandler := handler.NewTreeHandler(treeService, volumes, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", folderHandler.HealthCheck)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("POST /api/folders/ensure-path", folderHandler.EnsurePath)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("POST /api/folders/{id}/rename", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/available-name", folderHandler.AvailableName)

	// Temp folder provisioning
	mux.HandleFunc("POST /api/temp-folder", folderHandler.TempFolder)

	// Volume routes
	mux.HandleFunc("GET /api/volumes", treeHandler.ListVolumes)
	mux.HandleFunc("GET /api/volumes/{id}/tree", treeHandler.GetVolumeTree)

	// Build middleware chain (applied in reverse order, they wrap each other)
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogging(logger)(h)

	// CORS outermost so OPTIONS pre-flight requests are handled first
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
