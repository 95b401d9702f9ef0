// cmd/recommendationservice/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAPI "recommendation-service/internal/api"
	"recommendation-service/internal/clients"
	"recommendation-service/internal/config"
	grpcServer "recommendation-service/internal/grpc"
	"recommendation-service/internal/logging"
	"recommendation-service/internal/recommend"
	"recommendation-service/internal/store"
)

func main() {
	seedDemo := flag.Bool("seed-demo", false, "serve an in-memory demo catalog instead of opening DB_PATH")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "recommendation service: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Logging())
	logger := logging.NewSlogLogger()
	logger.Info("Configuration loaded",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Server.Port),
		slog.Int("grpcPort", cfg.Server.GRPCPort),
		slog.String("dbDriver", cfg.Database.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Catalog ---
	var catalog store.CatalogStore
	if *seedDemo {
		logger.Warn("Serving the in-memory demo catalog; DB_PATH is ignored")
		catalog = demoCatalog()
	} else {
		db, err := store.Connect(ctx, cfg.Database.Driver, cfg.Database.Path, logger)
		if err != nil {
			logger.Error("Recommendation service failed to initialize catalog connection", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			logger.Info("Closing catalog database connection...")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close catalog database connection", slog.String("error", err.Error()))
			}
		}()
		sqlCatalog, err := store.NewSQLCatalogStore(db, logger)
		if err != nil {
			logger.Error("Failed to initialize SQL catalog store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		catalog = sqlCatalog
	}

	// --- Review source ---
	reviews, err := clients.NewHTTPReviewSource(clients.ReviewSourceConfig{
		BaseURL:   cfg.Reviews.URL,
		Timeout:   cfg.Reviews.Timeout,
		RateLimit: cfg.Reviews.RateLimit,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize review source client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	engine := recommend.NewEngine(catalog, reviews, cfg.Recommend, logger)

	// --- gRPC health server ---
	health := grpcServer.NewServer(catalog, logger)
	grpcSrv := health.NewGRPCServer()
	grpcPort := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		logger.Error("Failed to listen for gRPC", slog.String("port", grpcPort), slog.String("error", err.Error()))
		os.Exit(1)
	}
	go health.Watch(ctx, 15*time.Second)
	go func() {
		logger.Info("gRPC health server starting", slog.String("port", grpcPort))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC server Serve() failed", slog.String("error", err.Error()))
		}
	}()

	// --- HTTP server ---
	handler := httpAPI.NewRecommendationHandler(engine, catalog, logger, cfg.IsDevelopment())
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpAPI.NewRouter(handler, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Recommendation service shutting down...")
	case err := <-serveErr:
		logger.Error("HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
	}

	health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	stopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		logger.Info("gRPC server gracefully stopped.")
	case <-shutdownCtx.Done():
		grpcSrv.Stop()
		logger.Warn("gRPC server forced to stop")
	}
}
