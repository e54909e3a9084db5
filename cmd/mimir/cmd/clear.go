package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Destroy all records in the namespace",
	Long: `Destroy the namespace's partition and every record in it. Clearing a
namespace that was never created is a no-op.

Example:
  mimir clear --namespace embeddings`,
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

		if err := tbl.Clear(); err != nil {
			return fmt.Errorf("clear failed: %w", err)
		}
		cmd.Printf("Cleared namespace %q\n", tbl.Namespace())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
