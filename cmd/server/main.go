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

	"docvault/internal/auth"
	"docvault/internal/capabilities"
	"docvault/internal/config"
	"docvault/internal/handler"
	"docvault/internal/middleware"
	"docvault/internal/repository/postgres"
	postgresStore "docvault/internal/repository/postgres/docstore"
	"docvault/internal/service/access"
	serviceDir "docvault/internal/service/directory"
	serviceStore "docvault/internal/service/docstore"
	serviceExt "docvault/internal/service/extstorage"
	"docvault/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
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
		"auth_mode", cfg.AuthMode,
		"storage_backend", cfg.StorageBackend,
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

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	tenantRepo := postgresStore.NewTenantRepository(repoConfig)
	userRepo := postgresStore.NewUserRepository(repoConfig)
	roleRepo := postgresStore.NewRoleRepository(repoConfig)
	folderRepo := postgresStore.NewFolderRepository(repoConfig)
	fileRepo := postgresStore.NewFileRepository(repoConfig)
	credRepo := postgresStore.NewCredentialRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Storage backend
	var store storage.Adapter
	switch cfg.StorageBackend {
	case config.StorageBackendObject:
		objectStore, err := storage.NewObjectAdapter(ctx, cfg.ObjectBucket, logger)
		if err != nil {
			log.Fatalf("Failed to create object storage adapter: %v", err)
		}
		defer objectStore.Close()
		store = objectStore
	default:
		store, err = storage.NewLocalAdapter(cfg.LocalStorageDir, logger)
		if err != nil {
			log.Fatalf("Failed to create local storage adapter: %v", err)
		}
	}

	// External storage providers from the capability registry
	registry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize provider registry: %v", err)
	}
	providers := make(map[string]serviceExt.Provider)
	for _, desc := range registry.List() {
		switch desc.Provider {
		case "googledrive":
			providers[desc.Provider] = serviceExt.NewGoogleDriveProvider(desc, logger)
		case "onedrive":
			providers[desc.Provider] = serviceExt.NewOneDriveProvider(desc, logger)
		}
	}
	refresher := serviceExt.NewTokenRefresher(registry)
	manager := serviceExt.NewManager(credRepo, providers, refresher, logger)
	connectService := serviceExt.NewConnectService(
		registry, credRepo, userRepo, manager,
		cfg.OAuthRedirectURL, cfg.Providers, cfg.JWTSecret, logger,
	)

	// Token verification, selected by auth mode
	var verifier auth.TokenVerifier
	if cfg.AuthMode == config.AuthModeJWKS {
		verifier, err = auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	} else {
		verifier, err = auth.NewLocalVerifier(cfg.JWTSecret, logger)
	}
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// Services
	resolver := access.NewResolver(userRepo, roleRepo, logger)
	tree := serviceStore.NewTree(folderRepo, fileRepo, store, logger)
	folderService := serviceStore.NewFolderService(folderRepo, resolver, tree, logger)
	fileService := serviceStore.NewFileService(fileRepo, folderRepo, store, manager, resolver, tree, logger)
	searchService := serviceStore.NewSearchService(fileRepo, folderRepo, resolver, tree, logger)
	authService := serviceDir.NewAuthService(userRepo, roleRepo, tenantRepo, txManager, issuer, logger)
	userService := serviceDir.NewUserService(userRepo, roleRepo, logger)
	roleService := serviceDir.NewRoleService(roleRepo, userRepo, logger)
	tenantService := serviceDir.NewTenantService(tenantRepo, userRepo)

	logger.Info("services initialized", "providers", registry.Names())

	// Routes (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Set{
		Health:          handler.NewHealthHandler(pool),
		Auth:            handler.NewAuthHandler(authService, logger),
		User:            handler.NewUserHandler(userService, logger),
		Tenant:          handler.NewTenantHandler(tenantService, logger),
		Role:            handler.NewRoleHandler(roleService, logger),
		Folder:          handler.NewFolderHandler(folderService, fileService, logger),
		File:            handler.NewFileHandler(fileService, searchService, logger),
		ExternalStorage: handler.NewExternalStorageHandler(connectService, logger),
	})

	// Build middleware chain, applied in reverse order (they wrap each other)
	// Order: CORS → Metrics → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.Auth(verifier, logger)(root)
	root = middleware.Recovery(logger)(root)
	root = middleware.Metrics()(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Large downloads stream through this window
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
