package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpattn/nwreports/internal/config"
	"github.com/rpattn/nwreports/internal/db"
	"github.com/rpattn/nwreports/internal/employees"
	"github.com/rpattn/nwreports/internal/export"
	"github.com/rpattn/nwreports/internal/ingestion"
	"github.com/rpattn/nwreports/internal/reports"
	"github.com/rpattn/nwreports/internal/repository"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml and .env")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	loader, err := config.NewLoader(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg, err := loader.Config()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if cfg.Database.Migrate {
		if err := db.RunMigrations(cfg.Database); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Create repositories
	reportRepo := repository.NewReportRepository(conn)
	employeeRepo := repository.NewEmployeeRepository(conn)
	currencyRepo := repository.NewCurrencyRepository()
	runLog := repository.NewIngestionLogRepository(conn)

	// Create services
	ingestionService := ingestion.NewService(
		cfg.Scraper.Source(),
		ingestion.NewHTTPFetcher(cfg.Scraper.Timeout, cfg.Scraper.UserAgent),
		ingestion.NewLoader(conn, currencyRepo, cfg.Ingestion.Transactional),
		runLog,
		ingestion.WithDeadline(cfg.Ingestion.Deadline),
	)

	if loader.Watch(func(s config.ScraperConfig) { ingestionService.SetSource(s.Source()) }) {
		log.Println("[CONFIG] watching config.yaml for scraper changes")
	}

	var scheduler *ingestion.Scheduler
	if cfg.Ingestion.Schedule != "" {
		scheduler, err = ingestion.NewScheduler(ingestionService, cfg.Ingestion.Schedule)
		if err != nil {
			log.Fatalf("Failed to schedule currency reloads: %v", err)
		}
		scheduler.Start()
		log.Printf("[CRON] currency reload scheduled: %s", cfg.Ingestion.Schedule)
	}

	handler := newRouter(routerDeps{
		reports:   reports.NewHTTPHandler(reportRepo),
		employees: employees.NewHTTPHandler(employees.NewService(employeeRepo)),
		ingestion: ingestion.NewHTTPHandler(ingestionService, runLog),
		export:    export.NewHTTPHandler(export.NewService(reportRepo)),
		health:    conn,
		staticDir: cfg.Server.StaticDir,
	}, cfg.Server.AllowedOrigins)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting report server on %s", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			log.Println("[CRON] scheduled reload still running at shutdown")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
