// Command cssd serves the CSSD tracking API and runs its maintenance jobs.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/config"
	"github.com/erazemk/cssd/internal/db"
	"github.com/erazemk/cssd/internal/metrics"
	"github.com/erazemk/cssd/internal/reconcile"
	"github.com/erazemk/cssd/internal/service"
	"github.com/erazemk/cssd/internal/store"
)

var (
	configPath string
	flagDB     string
	flagAddr   string
	flagStore  string
	flagLog    string
	flagLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "cssd",
	Short:         "Central Sterile Service Department tracking service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "cssd.yaml", "YAML config file (optional)")
	pf.StringVarP(&flagDB, "db", "d", "", "SQLite database path")
	pf.StringVar(&flagStore, "store-url", "", "remote collection store URL (default: local database)")
	pf.StringVarP(&flagLog, "log", "l", "", "log file path (default: stdout/stderr only)")
	pf.StringVar(&flagLevel, "log-level", "", "log level: debug, info, warn or error")

	serveCmd.Flags().StringVarP(&flagAddr, "addr", "a", "", "listen address")

	rootCmd.AddCommand(serveCmd, reconcileCmd, dedupeCmd, sweepCmd, reportCmd)
}

// env is everything a command needs, built from the config.
type env struct {
	cfg     *config.Config
	db      *sql.DB
	store   collection.Store
	metrics *metrics.Metrics
	engine  *reconcile.Engine
	service *service.Service
	close   func()
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB = flagDB
	}
	if flags.Changed("store-url") {
		cfg.StoreURL = flagStore
	}
	if flags.Changed("log") {
		cfg.Log.File = flagLog
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLevel
	}
	if flags.Changed("addr") {
		cfg.Addr = flagAddr
	}
	return cfg, cfg.Validate()
}

// setup loads the config, installs logging and opens the collection store.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	closeLog, err := setupLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, metrics: metrics.New(), close: closeLog}
	if cfg.Remote() {
		e.store = cfg.Client()
		slog.Info("using remote collection store", "url", cfg.StoreURL)
	} else {
		database, err := db.Open(cfg.DB)
		if err != nil {
			closeLog()
			return nil, fmt.Errorf("opening database: %w", err)
		}
		slog.Info("database ready", "path", cfg.DB)
		e.db = database
		e.store = store.NewCollections(database)
		e.close = func() {
			database.Close()
			closeLog()
		}
	}

	e.engine = reconcile.New(e.store,
		reconcile.WithMethods(cfg.Methods),
		reconcile.WithRecorder(e.metrics),
	)
	e.service = service.New(e.store)
	return e, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
