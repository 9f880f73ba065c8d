// Command churchctl runs maintenance tasks against the church admin
// database: migrations, backups, seeding, accounts and the birthday digest.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"churchadmin/internal/app"
	"churchadmin/internal/config"
	"churchadmin/internal/database"
	"churchadmin/internal/logging"
)

var (
	logLevel string
	dbType   string
	dbPath   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "churchctl",
	Short:         "Church admin maintenance tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel)
	},
}

// migrateCmd applies pending migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbType, "db-type", "", "Database type override (sqlite, postgres, mysql)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "SQLite database path override")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(birthdaysCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if dbType != "" {
		cfg.DatabaseType = dbType
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	return cfg
}

// openDB connects and migrates, so every command sees the current schema.
func openDB(ctx context.Context) (*database.DB, error) {
	cfg := loadConfig()
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openApp builds the full application for commands that need services.
// The returned cleanup closes the database.
func openApp(ctx context.Context) (*app.App, func(), error) {
	cfg := loadConfig()
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, db, app.Options{Version: "churchctl", Logger: slog.Default()})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return a, func() {
		a.Close()
		db.Close()
	}, nil
}
