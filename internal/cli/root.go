// Package cli provides the librarian command-line interface.
package cli

import (
	"fmt"
	"os"

	"library-assistant-be/internal/bootstrap"
	"library-assistant-be/internal/config"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	verbose bool

	cfg       *config.Config
	sysLogger *logger.ZapLogger
	container *bootstrap.Container
)

var rootCmd = &cobra.Command{
	Use:   "librarian",
	Short: "Talk to the library assistant from a terminal",
	Long: `Librarian runs the library assistant pipeline against the configured
catalogue database and completion backend.

Answers stream to stdout; logs go to stderr.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		level := zapcore.WarnLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		sysLogger = logger.NewConsoleLogger(level)

		if !needsCatalogue(cmd) {
			return nil
		}

		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !verbose)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		container, err = bootstrap.NewContainer(db, cfg, sysLogger)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			if err := container.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close connections: %v\n", err)
			}
		}
		if sysLogger != nil {
			_ = sysLogger.Sync()
		}
	},
}

func needsCatalogue(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "watch", "help", "version", "librarian":
		return false
	}
	return true
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(watchCmd)
}

// userFlag maps the --user flag to an optional user id; 0 means anonymous.
func userFlag(id int) *int {
	if id <= 0 {
		return nil
	}
	return &id
}
