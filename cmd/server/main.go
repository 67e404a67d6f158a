package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"txnproc/internal/config"
	"txnproc/internal/engine"
	"txnproc/internal/fileio"
	"txnproc/internal/handler"
	"txnproc/internal/refdata"
	"txnproc/internal/repository"
	"txnproc/internal/service"
)

func main() {
	// Initialise logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	// Load reference data once at startup; it is immutable afterwards.
	ref, err := loadReferenceData(cfg)
	if err != nil {
		logger.Error("failed to load reference data", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("reference data loaded", "bin_entries", ref.BinCount())

	// Connect to the archive database if enabled
	var archive repository.BatchArchive
	if cfg.ArchiveOn() {
		db, err := connectDB(cfg)
		if err != nil {
			logger.Error("failed to connect to archive database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		archive = repository.NewBatchArchive(db)
		logger.Info("connected to archive database successfully")
	} else {
		logger.Info("decision archive disabled, running compute-only")
	}

	// Initialise engine and service
	eng := engine.New(ref, logger)
	batchService := service.NewBatchService(eng, archive, logger)

	// Initialise handler
	batchHandler := handler.NewBatchHandler(batchService, logger)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	batchHandler.RegisterRoutes(router)

	// Add health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Add middleware for logging
	router.Use(loggingMiddleware(logger))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a go routine
	go func() {
		logger.Info("starting server on port " + cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err.Error())
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
	}

	logger.Info("server exited gracefully")
}

// loadReferenceData reads the country-code table and BIN table from the
// configured paths and validates the range invariants.
func loadReferenceData(cfg *config.Config) (*refdata.ReferenceData, error) {
	countries, err := fileio.ReadCountryCodes(cfg.CountryCodesPath)
	if err != nil {
		return nil, err
	}
	bins, err := fileio.ReadBinEntries(cfg.BinTablePath)
	if err != nil {
		return nil, err
	}
	return refdata.New(countries, bins)
}

// connectDB establishes a connection to the Postgres database
func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	// Confirm connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// loggingMiddleware logs incoming HTTP requests
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
