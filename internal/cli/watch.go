package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/semidx/semidx/internal/watcher"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Index the project, then keep the index current as files change",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, _, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Bring the index current before watching.
		result, err := idx.IndexDirectory(ctx, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Initial pass: %d indexed, %d unchanged, %d failed\n",
			len(result.Indexed), result.Unchanged, len(result.Failed))

		w, err := watcher.New(idx, flagDebounce, newLogger())
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		fmt.Printf("Watching %s (ctrl-c to stop)\n", idx.ProjectRoot())
		<-ctx.Done()
		fmt.Println("\nStopped.")
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is reindexed")
	rootCmd.AddCommand(watchCmd)
}
