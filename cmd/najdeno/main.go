// Command najdeno runs the lost-and-found server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
)

var (
	cfg      *config.Config
	closeLog = func() {}

	flagAddr   string
	flagDriver string
	flagDB     string
	flagLog    string
	flagEnv    string
)

var rootCmd = &cobra.Command{
	Use:           "najdeno",
	Short:         "Lost-and-found tags, drop-off points and owner messaging",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagEnv)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("addr") {
			cfg.Addr = flagAddr
		}
		if flags.Changed("driver") {
			cfg.DBDriver = flagDriver
		}
		if flags.Changed("db") {
			cfg.DBPath = flagDB
		}
		if flags.Changed("log") {
			cfg.LogPath = flagLog
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		closeLog, err = setupLogger(cfg.LogPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		fmt.Printf("Schema ready (%s).\n", cfg.DBDriver)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEnv, "env", ".env", "dotenv file to load before the environment")
	pf.StringVarP(&flagAddr, "addr", "a", ":8080", "listen address")
	pf.StringVar(&flagDriver, "driver", "sqlite", "database driver (sqlite or postgres)")
	pf.StringVarP(&flagDB, "db", "d", "najdeno.sqlite3", "SQLite database path")
	pf.StringVarP(&flagLog, "log", "l", "", "log file path (default: stdout/stderr only)")

	rootCmd.Args = cobra.NoArgs
	rootCmd.AddCommand(serveCmd, migrateCmd, staffCmd)
}

// openDatabase opens the configured backend and ensures the schema.
func openDatabase() (*db.DB, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := database.PingContext(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	slog.Info("database ready", "driver", cfg.DBDriver)
	return database, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
