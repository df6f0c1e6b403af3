package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stocks-dashboard/src/config"
	"stocks-dashboard/src/interfaces"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/network"
	"stocks-dashboard/src/refresher"
	"stocks-dashboard/src/server"
	"stocks-dashboard/src/session"
	"stocks-dashboard/src/storage"
	"stocks-dashboard/src/upstream"

	"github.com/joho/godotenv"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load .env before reading the config so TWELVE_DATA_API_KEY and friends
	// are visible to the env overrides. A missing .env is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env: %v\n", err)
	}

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.Name)

	// Setup storage backend
	var store interfaces.IWatchlistStore

	switch config.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresStore(config.MConfig, appLogger)
	case "sqlite":
		store, err = storage.NewSQLiteStore(config.MConfig, appLogger)
	default:
		// Default to the single-file JSON store
		store, err = storage.NewFileStore(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init storage: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to initialize storage: %v", err)
	}

	watchlist, err := storage.NewWatchlist(store, appLogger)
	if err != nil {
		appLogger.Critical("Failed to load watchlist: %v", err)
	}

	// Setup Components
	var networkManager interfaces.INetworkManager = network.NewNetworkManager(config.MConfig, appLogger)
	var market interfaces.IMarketData = upstream.NewClient(config.MConfig, networkManager)
	classifier := session.NewClassifier(config.Chart, config.SessionOpenMinutes(), config.SessionCloseMinutes(), appLogger)

	srv := server.NewDashboardServer(config, market, watchlist, classifier, appLogger)

	// Periodic watchlist refresh while the session is open
	if config.Refresh.Enabled {
		r := refresher.NewRefresher(market, watchlist, classifier, srv, appLogger)
		if err := r.Start(config.Refresh.Cron); err != nil {
			appLogger.Critical("Failed to start refresher: %v", err)
		}
		defer r.Stop()
	}

	// Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	srv.Stop()
	if err := watchlist.Close(); err != nil {
		appLogger.Error("Failed to close storage: %v", err)
	}
}
