// Package cli provides the command-line interface for the error catalog:
// serve, migrate, seed and export.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-catalog/internal/config"
	"github.com/tbourn/go-error-catalog/internal/repo"
	"github.com/tbourn/go-error-catalog/internal/sysutil"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

var (
	envFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog of documented programming errors",
	Long: `catalog serves and maintains a catalog of documented programming
errors with community votes.

Configuration is read from the environment; a .env file is loaded first
when present.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.Version = Version
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	c, err := config.Load()
	if err != nil {
		return err
	}
	cfg = c

	sysutil.SetupLogger(cmd.ErrOrStderr(), cfg.LogPretty)
	sysutil.SetLogLevel(cfg.LogLevel)
	return nil
}

// openDB opens the configured database and applies migrations. The returned
// close func releases the pool.
func openDB() (*gorm.DB, func(), error) {
	db, err := repo.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, closeFn, nil
}
