package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove index entries for deleted files and stray artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, _, err := setup()
		if err != nil {
			return err
		}

		deleted, err := idx.CleanupDeletedFiles()
		if err != nil {
			return err
		}
		stray, err := idx.CleanupIndexFiles()
		if err != nil {
			return err
		}

		if len(deleted) == 0 && len(stray) == 0 {
			color.Green("Nothing to clean.")
			return nil
		}
		for _, path := range deleted {
			fmt.Printf("  removed %s (deleted from disk)\n", idx.Store().RelPath(path))
		}
		for _, path := range stray {
			fmt.Printf("  removed %s (inside index directory)\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
