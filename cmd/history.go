package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/mktorrent/internal/history"
	"github.com/surge-downloader/mktorrent/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List previously created torrents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		clearAll, _ := cmd.Flags().GetBool("clear")
		out := cmd.OutOrStdout()

		if clearAll {
			n, err := history.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d history entries\n", n)
			return nil
		}

		if len(args) == 1 {
			rec, err := history.Get(args[0])
			if err != nil {
				return err
			}
			return report.RenderHistory(out, []history.Record{*rec}, report.ColorProfile(out))
		}

		records, err := history.List(limit)
		if err != nil {
			return err
		}
		return report.RenderHistory(out, records, report.ColorProfile(out))
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 20, "Number of entries to show (0 shows all)")
	historyCmd.Flags().Bool("clear", false, "Delete all history entries")
	rootCmd.AddCommand(historyCmd)
}
