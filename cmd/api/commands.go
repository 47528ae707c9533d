package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solarflow/internal/app"
	"solarflow/internal/config"
	"solarflow/internal/database"
	"solarflow/internal/session"
	"solarflow/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:           "solarflow",
		Short:         "SolarFlow CRM API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
			return cfg.Validate()
		},
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo staff accounts and starter inventory",
		RunE:  runSeed,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func openDB() (*gorm.DB, error) {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if _, err := openDB(); err != nil {
		return err
	}
	slog.Info("migrations completed")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	return database.Seed(cmd.Context(), db)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB()
	if err != nil {
		return err
	}
	if cfg.SeedDemo {
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	var blocklist session.Blocklist
	if cfg.RedisAddr != "" {
		rdb, err := session.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		blocklist = session.NewRedisBlocklist(rdb)
		slog.Info("token revocation backed by redis", "addr", cfg.RedisAddr)
	}
	sessions := session.NewManager([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL, blocklist)

	logger := slog.Default()
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	gin.SetMode(cfg.GinMode)
	router := app.NewRouter(app.Deps{
		Config:   cfg,
		DB:       db,
		Sessions: sessions,
		Hub:      hub,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
