package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Export the namespace to a dump artifact",
	Long: `Export every record in the namespace to a flat binary dump artifact.

The artifact can later be loaded with 'mimir restore'. With no --out flag the
table's configured dump path is used.

Example:
  mimir dump --namespace embeddings --out ./embeddings.dump`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tbl, err := openAdmin(cfg)
		if err != nil {
			return err
		}
		defer tbl.Close()

		out, _ := cmd.Flags().GetString("out")
		if err := tbl.Export(out); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		cmd.Printf("Exported namespace %q\n", tbl.Namespace())
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringP("out", "o", "", "Artifact path (default: configured dump path)")
	rootCmd.AddCommand(dumpCmd)
}
