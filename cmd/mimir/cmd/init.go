/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/mimir/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a Mimir configuration",
	Long: `Create a configuration file with a generated API key.

Example:
  mimir init --config ./mimir.yaml --data-dir ./data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		if config.ConfigExists(configPath) {
			return fmt.Errorf("config already exists at %s", configPath)
		}

		dataDir, _ := cmd.Flags().GetString("data-dir")
		cfg, err := config.BootstrapConfig(configPath, dataDir)
		if err != nil {
			return err
		}

		cmd.Printf("Wrote config to %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("API key: %s\n", cfg.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
