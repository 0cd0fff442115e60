// Package main contains the entrypoint for the Oracle query engine service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relatahq/oracle/internal/api"
	"github.com/relatahq/oracle/internal/config"
	"github.com/relatahq/oracle/internal/database"
	"github.com/relatahq/oracle/internal/gemini"
	"github.com/relatahq/oracle/internal/logger"
	"github.com/relatahq/oracle/internal/meetingprep"
	"github.com/relatahq/oracle/internal/oracle"
	"github.com/relatahq/oracle/internal/tasks"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// ai client, services, HTTP server, scheduler), handles graceful shutdown,
// and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var generator meetingprep.Generator
	if cfg.Gemini.Enabled() {
		generator, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
		log.Info("Gemini client initialized", "model", cfg.Gemini.ModelName)
	} else {
		log.Info("No Gemini API key configured, meeting prep will use deterministic synthesis")
	}

	oracleService := oracle.NewService(store, log, cfg.Oracle.FetchTimeout)
	prepService := meetingprep.NewService(store, generator, log)
	auth := api.NewAuthenticator(cfg.Auth.Tokens, log)

	server := api.NewServer(oracleService, prepService, store, auth, log)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sched, err := tasks.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	if err := sched.Start(); err != nil {
		log.Error("Failed to start scheduler", "error", err)
		return 1
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", cfg.Server.Addr)
		serverErr <- httpServer.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	if err := sched.Stop(); err != nil {
		log.Error("Scheduler shutdown failed", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		log.Error("Server stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Server stopped gracefully")
	return 0
}
