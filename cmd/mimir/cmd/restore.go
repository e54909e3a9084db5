package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the namespace from a dump artifact",
	Long: `Clear the namespace and reload it in full from a dump artifact.

Restore always replaces, never merges: the namespace is cleared before the
artifact is even opened, so restoring from a missing or corrupt artifact
leaves the namespace empty.

Example:
  mimir restore --namespace embeddings --in ./embeddings.dump`,
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

		in, _ := cmd.Flags().GetString("in")
		if err := tbl.Import(in); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		cmd.Printf("Restored namespace %q\n", tbl.Namespace())
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringP("in", "i", "", "Artifact path (default: configured dump path)")
	rootCmd.AddCommand(restoreCmd)
}
