package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreybb/todo-api/api"
	"github.com/coreybb/todo-api/auth"
	"github.com/coreybb/todo-api/config"
	"github.com/coreybb/todo-api/datastore"
	rh "github.com/coreybb/todo-api/route-handlers"
)

const (
	schemaTimeout   = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	db, err := datastore.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancelSchema()
	if err := datastore.EnsureSchema(schemaCtx, db); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}
	log.Println("Database connection successful")

	tokenIssuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("Token issuer setup failed: %v", err)
	}

	userRepo := datastore.NewUserRepository(db)
	todoRepo := datastore.NewTodoRepository(db)

	authHandler := rh.NewAuthHandler(userRepo, tokenIssuer)
	todoHandler := rh.NewTodoHandler(todoRepo)

	router := api.SetupRoutes(cfg.AllowedOrigins, authHandler, todoHandler, tokenIssuer, userRepo)

	startServer(cfg.Port, router)
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
