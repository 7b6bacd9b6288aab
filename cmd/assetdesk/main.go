// Command assetdesk runs the asset-management API and its operator tasks.
package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/backup"
	"github.com/erazemk/assetdesk/internal/config"
	"github.com/erazemk/assetdesk/internal/db"
	"github.com/erazemk/assetdesk/internal/logging"
)

// app carries what PersistentPreRunE prepares for the subcommands.
type app struct {
	cfgPath  string
	dbPath   string
	dataDir  string
	logLevel string
	logFile  string

	cfg      *config.Config
	log      *zap.Logger
	closeLog func()
	out      io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, closeLog: func() {}}

	root := &cobra.Command{
		Use:          "assetdesk",
		Short:        "IT asset management service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.closeLog()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgPath, "config", "c", "assetdesk.yaml", "YAML config file (missing file is ignored)")
	pf.StringVarP(&a.dbPath, "db", "d", "", "SQLite database path")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory for images and backups")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVarP(&a.logFile, "log", "l", "", "also append logs to this file")

	root.AddCommand(
		newServeCmd(a),
		newInitCmd(a),
		newUserCmd(a),
		newBackupCmd(a),
	)
	return root
}

// setup loads the config, applies flags that were set explicitly and
// builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = a.dbPath
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log") {
		cfg.Log.File = a.logFile
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("user") {
		cfg.AdminUser, _ = flags.GetString("user")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.closeLog = cfg, log, closeLog
	return nil
}

// openDatabase opens the configured database and brings its schema up to
// date. The database must already exist unless create is set.
func (a *app) openDatabase(create bool) (*sql.DB, error) {
	if !create {
		if _, err := os.Stat(a.cfg.DBPath); err != nil {
			return nil, fmt.Errorf("database %s not found (run assetdesk init): %w", a.cfg.DBPath, err)
		}
	}
	if dir := filepath.Dir(a.cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func (a *app) backups(database *sql.DB) (*backup.Coordinator, error) {
	return backup.New(database, a.cfg.BackupDir(), a.log)
}
