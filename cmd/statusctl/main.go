package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"delivered-status-service/internal/config"
	"delivered-status-service/internal/logging"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "statusctl",
	Short: "Delivered status service admin tool",
	Long:  `statusctl inspects order statuses and runs maintenance tasks against the order store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		logger = logging.New(logging.Options{Level: cfg.LogLevel, Format: "text"})
		return nil
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
