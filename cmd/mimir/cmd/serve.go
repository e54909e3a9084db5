/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/mimir/pkg/api"
	"github.com/ssargent/mimir/pkg/config"
	"github.com/ssargent/mimir/pkg/table"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the Mimir REST API server, exposing the configured table's full
operation surface (find, insert, remove, clear, stats, dump export/import)
plus a Prometheus /metrics endpoint.

Examples:
  mimir serve --api-key=mysecretkey --port=8080
  mimir serve --config ./mimir.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cfg.APIKey == "" || cfg.APIKey == "auto" {
			return fmt.Errorf("an API key is required (--api-key, or run 'mimir init' first)")
		}

		return startServer(cfg)
	},
}

// startServer is the serving half of the kind dispatch table: each supported
// (key_kind, value_kind) pair instantiates the typed table and server.
func startServer(cfg *config.Config) error {
	serverCfg := api.ServerConfig{Port: cfg.Port, Bind: cfg.Bind, APIKey: cfg.APIKey}
	opts := tableOptions(cfg)

	switch cfg.Table.KeyKind + "/" + cfg.Table.ValueKind {
	case "int32/float32":
		return serveTable[int32, float32](opts, serverCfg)
	case "int32/float64":
		return serveTable[int32, float64](opts, serverCfg)
	case "int64/float32":
		return serveTable[int64, float32](opts, serverCfg)
	case "int64/float64":
		return serveTable[int64, float64](opts, serverCfg)
	case "int64/int32":
		return serveTable[int64, int32](opts, serverCfg)
	case "int64/int64":
		return serveTable[int64, int64](opts, serverCfg)
	case "uint64/float32":
		return serveTable[uint64, float32](opts, serverCfg)
	case "string/float32":
		return serveTable[string, float32](opts, serverCfg)
	case "string/float64":
		return serveTable[string, float64](opts, serverCfg)
	case "string/bytes":
		return serveTable[string, string](opts, serverCfg)
	case "int64/bytes":
		return serveTable[int64, string](opts, serverCfg)
	default:
		return fmt.Errorf("unsupported table kinds %s/%s", cfg.Table.KeyKind, cfg.Table.ValueKind)
	}
}

func serveTable[K table.Key, V table.Value](opts table.Options, serverCfg api.ServerConfig) error {
	tbl, err := table.Open[K, V](opts)
	if err != nil {
		return err
	}
	defer tbl.Close()
	return api.StartServer(tbl, serverCfg)
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
	rootCmd.AddCommand(serveCmd)
}
