package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/semidx/semidx/internal/search"
)

var flagLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the index for files similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, cfg, err := setup()
		if err != nil {
			return err
		}

		query := args[0]
		for _, arg := range args[1:] {
			query += " " + arg
		}
		limit := flagLimit
		if limit <= 0 {
			limit = cfg.Search.DefaultLimit
		}

		// The provider configured on the indexer also embeds queries.
		sidx := search.NewIndex(idx.Store(), idx.Provider())
		if err := sidx.Load(); err != nil {
			return err
		}
		if sidx.Len() == 0 {
			return fmt.Errorf("the index is empty; run 'semidx index' first")
		}

		results, err := sidx.Search(cmd.Context(), query, limit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		pathColor := color.New(color.FgCyan, color.Bold)
		for i, r := range results {
			fmt.Printf("%2d. %s  %.3f\n", i+1, pathColor.Sprint(r.Path), r.Score)
			if r.BestChunk.Name != "" {
				fmt.Printf("    %s %s (lines %d-%d)\n",
					r.BestChunk.Type, r.BestChunk.Name, r.BestChunk.StartLine, r.BestChunk.EndLine)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "maximum results (default from config)")
	rootCmd.AddCommand(searchCmd)
}
