package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semidx/semidx/internal/planner"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the index is complete and up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, _, err := setup()
		if err != nil {
			return err
		}

		status, err := idx.IsIndexComplete()
		if err != nil {
			return err
		}

		if status.Complete {
			color.Green("Index complete: %s", status.Reason)
		} else {
			color.Yellow("Index incomplete: %s", status.Reason)
		}
		fmt.Printf("  Indexed files: %d\n", len(idx.GetIndexedFiles()))
		fmt.Printf("  Missing:       %d\n", status.MissingCount)
		fmt.Printf("  Outdated:      %d\n", status.OutdatedCount)
		fmt.Printf("  Deleted:       %d\n", status.DeletedCount)
		fmt.Printf("  Ignored:       %d\n", status.IgnoredCount)

		decision, err := planner.New(idx.Journal(), idx.Store()).DecideScanMode()
		if err != nil {
			return err
		}
		fmt.Printf("  Next scan:     %s (%s)\n", decision.Mode, decision.Reason)

		if samples := idx.GetSampleFiles(5); len(samples) > 0 {
			fmt.Println("  Sample:")
			for _, s := range samples {
				fmt.Printf("    %s\n", s)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
