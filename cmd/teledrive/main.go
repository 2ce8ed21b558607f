package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tele-drive/conf"
	"tele-drive/controller"
	"tele-drive/database"
	"tele-drive/event"
	"tele-drive/scanner"
	"tele-drive/service/file_service"
	"tele-drive/service/import_service"
	"tele-drive/service/scan_service"
	"tele-drive/service/share_service"
	"tele-drive/storage"
	"tele-drive/telegram"
)

var ENV string

func init() {
	flag.StringVar(&ENV, "env", "prod", "Environment: loc/prod/example")
}

// @title           TeleDrive API
// @version         1.0
// @description     Channel file indexing and drive API: session import, channel scans, files, folders and share links

// @host      localhost:8080
// @BasePath  /api

// @schemes http https

func main() {
	// Initialize all components
	srv, cleanup := initAll()
	defer cleanup()

	// Start HTTP API service (in goroutine)
	go startServer(srv)
	log.Println("TeleDrive API service started successfully")

	// Wait for shutdown signal
	waitForShutdown()

	log.Println("Shutting down...")

	// Gracefully shutdown HTTP service
	shutdownServer(srv)

	log.Println("Server exited")
}

// initEnv initialize environment
func initEnv() {
	switch ENV {
	case "loc":
		conf.SystemEnvironmentEnum = conf.LocalEnvironmentEnum
	case "prod":
		conf.SystemEnvironmentEnum = conf.MainnetEnvironmentEnum
	case "example":
		conf.SystemEnvironmentEnum = conf.ExampleEnvironmentEnum
	}
	fmt.Printf("Environment: %s\n", ENV)
}

// initAll initialize all components
func initAll() (*http.Server, func()) {
	// Parse command line parameters
	flag.Parse()

	// Set environment
	initEnv()

	// Initialize configuration
	if err := conf.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	log.Printf("Configuration loaded: env=%s, port=%s", ENV, conf.Cfg.Port)

	// Initialize database
	if err := initDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (optional, won't fail if disabled or unavailable)
	if err := database.InitRedis(); err != nil {
		log.Printf("Redis initialization failed (cache will be disabled): %v", err)
	}

	// Initialize storage
	stor, err := storage.NewStorage()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage initialized: type=%s", conf.Cfg.Storage.Type)

	// Messaging client: the wire driver loads the materialized session
	// artifact. Until one is linked in, the unavailable client keeps the
	// metadata and local-storage surfaces functional.
	client := telegram.NewUnavailableClient(conf.SessionFilePath())

	// Scan engine and event bus
	bus := event.NewBus()
	engine := scanner.NewEngine(database.DB, bus, scanner.Config{
		MaxConcurrentScans: conf.Cfg.Scanner.MaxConcurrentScans,
		BatchSize:          conf.Cfg.Scanner.BatchSize,
		StallTimeout:       time.Duration(conf.Cfg.Scanner.StallTimeoutSeconds) * time.Second,
		ControlTimeout:     time.Duration(conf.Cfg.Scanner.ControlTimeoutSecs) * time.Second,
		MaxRetries:         conf.Cfg.Scanner.MaxRetries,
	})

	// Services
	importService := import_service.NewImportService()
	scanService := scan_service.NewScanService(engine, bus, client)
	fileService := file_service.NewFileService(stor, client)
	shareService := share_service.NewShareService(fileService)

	// Router and HTTP server
	router := controller.SetupRouter(importService, scanService, fileService, shareService)
	srv := &http.Server{
		Addr:    ":" + conf.Cfg.Port,
		Handler: router,
	}

	cleanup := func() {
		if err := database.CloseRedis(); err != nil {
			log.Printf("Failed to close Redis: %v", err)
		}
	}
	return srv, cleanup
}

// initDatabase initialize the metadata store
func initDatabase() error {
	switch conf.Cfg.Database.Type {
	case "mysql":
		return database.InitDatabase(database.DBTypeMySQL, &database.MySQLConfig{
			DSN:          conf.Cfg.Database.Dsn,
			MaxOpenConns: conf.Cfg.Database.MaxOpenConns,
			MaxIdleConns: conf.Cfg.Database.MaxIdleConns,
		})
	default:
		return database.InitDatabase(database.DBTypeSQLite, &database.SQLiteConfig{
			Path: conf.Cfg.Database.Path,
		})
	}
}

// startServer start the HTTP server
func startServer(srv *http.Server) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForShutdown block until an interrupt or terminate signal arrives
func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// shutdownServer gracefully shutdown the HTTP server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
