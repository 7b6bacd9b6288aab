package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/auth"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

const generatedPasswordLength = 16

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and the first admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.cfg.DBPath); err == nil {
				return fmt.Errorf("database file %s already exists", a.cfg.DBPath)
			}

			database, password, err := a.initDatabase(cmd.Context())
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(a.out, a.cfg.DBPath, a.cfg.AdminUser, password)
			return nil
		},
	}
	cmd.Flags().StringP("user", "u", "admin", "admin username")
	return cmd
}

// initDatabase creates a new database with the schema and an admin user.
// On failure the half-created file is removed.
func (a *app) initDatabase(ctx context.Context) (*sql.DB, string, error) {
	database, err := a.openDatabase(true)
	if err != nil {
		return nil, "", err
	}
	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(a.cfg.DBPath)
		return nil, "", err
	}

	password, err := auth.GeneratePassword(generatedPasswordLength)
	if err != nil {
		return fail(err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}
	if _, err := store.CreateUser(ctx, database, a.cfg.AdminUser, hash, model.RoleAdmin); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}
	if _, err := store.GetJWTSecret(ctx, database); err != nil {
		return fail(err)
	}

	a.log.Info("database initialised", zap.String("path", a.cfg.DBPath), zap.String("admin", a.cfg.AdminUser))
	return database, password, nil
}

func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
}
