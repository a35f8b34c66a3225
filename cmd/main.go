/*
Package main starts the Paperboard collaboration server: configuration, logging,
the folder store, the room registry, the HTTP/websocket router, and graceful
shutdown on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paperboard/internal/app/collab"
	"paperboard/internal/app/db"
	"paperboard/internal/app/folder"
	"paperboard/internal/configs"
	"paperboard/internal/handler"
	"paperboard/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.Init(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "failed to connect to database")
	}
	defer pool.Close()

	// One registry per process, passed by reference to whatever accepts
	// connections.
	registry := collab.NewRegistry()

	deps := &handler.AppDeps{
		Config:   cfg,
		Registry: registry,
		Folders:  folder.NewPGStore(pool),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("collaboration server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "server forced to shut down")
	}

	logx.Info("server stopped")
}
