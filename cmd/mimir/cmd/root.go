/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/ssargent/mimir/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mimir",
	Short: "Mimir - Persistent embedding table store",
	Long: `Mimir is a persistent, batched key-vector lookup table backed by an
embedded ordered key-value store, used as durable storage for large
sparse embedding tables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		setupLogging(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl}))
	slog.SetDefault(logger)
}

// loadConfig loads the config file named by --config (defaulting to the
// platform path) and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	var cfg *config.Config
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("namespace") {
		cfg.Table.Namespace, _ = cmd.Flags().GetString("namespace")
	}
	if cmd.Flags().Changed("read-only") {
		cfg.Table.ReadOnly, _ = cmd.Flags().GetBool("read-only")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the store")
	rootCmd.PersistentFlags().StringP("namespace", "n", "", "Namespace to operate on")
	rootCmd.PersistentFlags().Bool("read-only", false, "Open the store read-only")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
