package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/api"
	"github.com/erazemk/assetdesk/internal/auth"
	"github.com/erazemk/assetdesk/internal/imaging"
	"github.com/erazemk/assetdesk/internal/inventory"
	"github.com/erazemk/assetdesk/internal/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringP("addr", "a", ":8080", "listen address")
	cmd.Flags().StringP("user", "u", "admin", "admin username when the database is created")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := a.log

	// First run creates the database like init does.
	if _, err := os.Stat(a.cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := a.initDatabase(ctx)
		if err != nil {
			return fmt.Errorf("initialising database: %w", err)
		}
		database.Close()
		printInitResult(a.out, a.cfg.DBPath, a.cfg.AdminUser, password)
		fmt.Fprintln(a.out)
	}

	database, err := a.openDatabase(false)
	if err != nil {
		return err
	}
	defer database.Close()
	log.Info("database ready", zap.String("path", a.cfg.DBPath))

	secret := a.cfg.JWTSecret
	if secret == "" {
		if secret, err = store.GetJWTSecret(ctx, database); err != nil {
			return err
		}
	}

	images, err := imaging.NewStore(a.cfg.ImageDir(), a.cfg.MaxImageBytes)
	if err != nil {
		return err
	}
	backups, err := a.backups(database)
	if err != nil {
		return err
	}

	handler := api.NewRouter(api.Deps{
		DB:        database,
		Inventory: inventory.New(database, images, log),
		Issuer:    auth.NewIssuer(secret, a.cfg.TokenTTL),
		Backups:   backups,
		Images:    images,
		Log:       log,
	})

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", a.cfg.Addr))
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}

	log.Info("server stopped, closing database")
	return nil
}
