package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semidx/semidx/internal/runlog"
)

var flagPruneAge time.Duration

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List recorded indexing runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, _, err := setup()
		if err != nil {
			return err
		}

		if flagPruneAge > 0 {
			pruned, err := idx.Journal().PruneOlderThan(flagPruneAge)
			if err != nil {
				return err
			}
			fmt.Printf("Pruned %d runs older than %s\n", pruned, flagPruneAge)
		}

		runs, err := idx.Journal().List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, run := range runs {
			line := fmt.Sprintf("%s  %-10s indexed=%d failed=%d deleted=%d in %dms",
				run.Timestamp.Format(time.RFC3339), run.Status,
				run.Stats.FilesIndexed, run.Stats.FilesFailed,
				run.Stats.FilesDeleted, run.Stats.ProcessingTime)
			switch run.Status {
			case runlog.StatusCompleted:
				fmt.Println(line)
			case runlog.StatusFailed:
				color.Red("%s", line)
			default:
				color.Yellow("%s", line)
			}
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().DurationVar(&flagPruneAge, "prune", 0, "prune runs older than this age before listing")
	rootCmd.AddCommand(logsCmd)
}
