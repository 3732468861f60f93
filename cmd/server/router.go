package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/rpattn/nwreports/internal/ingestion"
	"github.com/rpattn/nwreports/internal/middleware"
	"github.com/rpattn/nwreports/internal/reports"

	"github.com/rs/cors"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	reports   *reports.Handler
	employees http.Handler
	ingestion *ingestion.Handler
	export    http.Handler
	health    pinger
	staticDir string
}

func newRouter(deps routerDeps, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	for _, route := range deps.reports.Routes() {
		mux.HandleFunc(route.Pattern, route.Handler)
	}
	mux.Handle("POST /insert_into_hr_employee_table", deps.employees)
	mux.HandleFunc("POST /reload_currencies", deps.ingestion.Reload)
	mux.HandleFunc("GET /get_ingestion_runs", deps.ingestion.ListRuns)
	mux.Handle("GET /export/{report}", deps.export)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.health.Ping(r.Context()); err != nil {
			log.Printf("[DB] health check failed: %v", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if info, err := os.Stat(deps.staticDir); err == nil && info.IsDir() {
		mux.Handle("GET /", http.FileServer(http.Dir(deps.staticDir)))
	}

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	return corsHandler.Handler(middleware.LoggingMiddleware(middleware.Recoverer(mux)))
}
