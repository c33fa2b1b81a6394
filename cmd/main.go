package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hvac_assistant/internal/gateway"
	"hvac_assistant/internal/handlers"
	"hvac_assistant/internal/logger"
	"hvac_assistant/internal/repository"
	"hvac_assistant/internal/repository/db"
	"hvac_assistant/internal/server"
	"hvac_assistant/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log_level"))

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	live, synth := buildGateways(log)
	services := service.NewService(repos, live, synth, viper.GetString("auth.signing_key"), log)
	apiHandler := handlers.NewHandler(services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetEnvPrefix("hvac")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // HVAC_VENDOR_USERNAME etc. override the file
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "hvac_data.db")
		dbPath = "hvac_data.db"
	}
	return db.InitDB(dbPath)
}

// buildGateways selects the data source once at startup. Missing vendor
// credentials force synthetic mode no matter what the flag says; after
// startup the only switch-back is the per-call fallback on live failures.
func buildGateways(log *logger.Logger) (gateway.Gateway, gateway.Gateway) {
	synth := gateway.NewSyntheticGateway()

	if viper.GetBool("hvac.use_synthetic_data") {
		log.Infow("synthetic device data enabled by config")
		return nil, synth
	}

	cfg := gateway.VendorConfig{
		BaseURL:  viper.GetString("hvac.vendor.base_url"),
		Username: viper.GetString("hvac.vendor.username"),
		Password: viper.GetString("hvac.vendor.password"),
		Timeout:  viper.GetDuration("hvac.vendor.timeout"),
	}
	if cfg.Username == "" || cfg.Password == "" {
		log.Warnw("vendor credentials not provided; using synthetic device data")
		return nil, synth
	}

	log.Infow("live vendor gateway configured", "base_url", cfg.BaseURL)
	return gateway.NewLiveGateway(cfg), synth
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
