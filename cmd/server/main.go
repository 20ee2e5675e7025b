// Package main is the entry point for the active defence server and CLI
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/active-defence/cmd/server/client"
	"github.com/KirkDiggler/active-defence/internal/config"
)

var (
	configPath string
	envFile    string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "active-defence",
	Short: "Active defence rolls and dice sessions",
	Long: `active-defence resolves D&D style active defence rolls (d20 with advantage or
disadvantage plus armour class) and serves a gRPC dice service with roll sessions.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(rollCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(client.ClientCmd)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	return nil
}
