package cmd

import (
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show table statistics",
	Long: `Show the table's shape and storage footprint.

The element count always reads 0: the contract reports a placeholder rather
than scanning the namespace. The byte figure is the engine's disk-usage
estimate.`,
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

		approx, err := tbl.ApproximateSize()
		if err != nil {
			return err
		}

		cmd.Printf("Namespace:         %s\n", tbl.Namespace())
		cmd.Printf("Row width:         %d\n", tbl.RowWidth())
		cmd.Printf("Size (reported):   %d\n", tbl.Size())
		cmd.Printf("Approximate bytes: %d\n", approx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
