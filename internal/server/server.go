// Package server owns the process lifecycle: boot the ambient services,
// bind the HTTP and gRPC listeners, and drain everything on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/myshop/config"
	"github.com/shashiranjanraj/myshop/internal/kernel"
	"github.com/shashiranjanraj/myshop/pkg/cache"
	"github.com/shashiranjanraj/myshop/pkg/database"
	"github.com/shashiranjanraj/myshop/pkg/event"
	"github.com/shashiranjanraj/myshop/pkg/grpcserver"
	"github.com/shashiranjanraj/myshop/pkg/logger"
	"github.com/shashiranjanraj/myshop/pkg/migration"
	"github.com/shashiranjanraj/myshop/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// Start boots every subsystem and blocks until a shutdown signal arrives.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logger.Setup(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if err := database.Connect(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("cache: redis unavailable, using in-process cache", "error", err)
	}
	storage.Connect()

	if err := migration.New(database.DB).Run(); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	handler, err := kernel.NewHandler()
	if err != nil {
		return fmt.Errorf("kernel: %w", err)
	}

	addr := ":" + config.AppPort()
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv, err := grpcserver.Start(config.GRPCPort())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: server starting", "addr", addr, "env", config.AppEnv())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		grpcserver.Stop(grpcSrv)
		return fmt.Errorf("http: %w", err)
	case sig := <-stop:
		logger.Info("server: shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("http: shutdown", "error", err)
	}
	grpcserver.Stop(grpcSrv)

	// Drain async event handlers and flush the log sink before exit.
	event.Flush()
	logger.Shutdown()
	return nil
}
