package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semidx/semidx/internal/indexer"
	"github.com/semidx/semidx/internal/planner"
	"github.com/semidx/semidx/internal/runlog"
)

var (
	flagForce bool
	flagPlan  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the project, reprocessing only changed files",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, cfg, err := setup()
		if err != nil {
			return err
		}

		plan := planner.New(idx.Journal(), idx.Store())
		decision, err := plan.DecideScanMode()
		if err != nil {
			return err
		}
		if flagPlan {
			fmt.Printf("scan mode: %s (%s)\n", decision.Mode, decision.Reason)
			return nil
		}
		if decision.Mode == planner.ModeNone && !flagForce {
			color.Green("Index is current: %s", decision.Reason)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := &indexer.Options{
			Progress: func(p indexer.Progress) {
				if p.Err != nil {
					color.Red("  [%d/%d] FAIL %s: %v", p.Completed, p.Total, p.Path, p.Err)
					return
				}
				fmt.Printf("  [%d/%d] %s\n", p.Completed, p.Total, p.Path)
			},
		}

		fmt.Printf("Indexing %s (%s)...\n", idx.ProjectRoot(), decision.Mode)
		start := time.Now()

		var result *indexer.Result
		if flagForce {
			result, err = idx.ForceReindexAll(ctx, opts)
		} else {
			result, err = idx.IndexDirectory(ctx, opts)
		}
		if err != nil {
			return err
		}

		printRunSummary(result, time.Since(start))

		if cfg.Logs.RetentionDays > 0 {
			retention := time.Duration(cfg.Logs.RetentionDays) * 24 * time.Hour
			if _, err := idx.Journal().PruneOlderThan(retention); err != nil {
				color.Yellow("log pruning failed: %v", err)
			}
		}
		return nil
	},
}

func printRunSummary(result *indexer.Result, elapsed time.Duration) {
	fmt.Printf("\nDone in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Indexed:   %d\n", len(result.Indexed))
	fmt.Printf("  Unchanged: %d\n", result.Unchanged)
	if len(result.Deleted) > 0 {
		fmt.Printf("  Removed:   %d\n", len(result.Deleted))
	}
	if len(result.Failed) > 0 {
		color.Red("  Failed:    %d", len(result.Failed))
		for _, f := range result.Failed {
			color.Red("    %s: %v", f.Path, f.Err)
		}
	}
	if result.Cancelled {
		color.Yellow("  Run cancelled before completion (status %s)", runlog.StatusCancelled)
	}
}

var reindexCmd = &cobra.Command{
	Use:   "reindex <file>",
	Short: "Reindex exactly one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, _, err := setup()
		if err != nil {
			return err
		}
		meta, err := idx.ReindexFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		color.Green("Reindexed %s (%d chunks)", meta.Path, len(meta.Chunks))
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "clear the cache and reindex everything")
	indexCmd.Flags().BoolVar(&flagPlan, "plan", false, "print the planned scan mode and exit")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(reindexCmd)
}
