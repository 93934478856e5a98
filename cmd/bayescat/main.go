package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bayescat",
	Short: "Two-level Naive Bayes product classifier",
	Long: `bayescat trains a brand classifier plus one model classifier per brand
from a labeled file, then evaluates it or classifies product descriptions.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reportsCmd)

	rootCmd.PersistentFlags().String("config", "", "YAML or TOML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database for datasets and reports")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
