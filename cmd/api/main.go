package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/logging"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "woodblock",
	Short: "Wood block puzzle game server",
	Long: `woodblock serves the 10x10 block puzzle over HTTP and WebSocket.

Run without arguments to start the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.IsProduction())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: start the server
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, autoplayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
