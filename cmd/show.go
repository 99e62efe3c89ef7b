package cmd

import (
	"github.com/spf13/cobra"

	"github.com/surge-downloader/mktorrent/internal/report"
	"github.com/surge-downloader/mktorrent/internal/torrent"
)

var showCmd = &cobra.Command{
	Use:   "show <file.torrent>",
	Short: "Print the contents of a .torrent file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetBool("files")

		meta, err := torrent.LoadTorrent(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return report.RenderTorrent(out, meta, report.ShowOptions{Files: files}, report.ColorProfile(out))
	},
}

func init() {
	showCmd.Flags().Bool("files", false, "List every file in the torrent")
	rootCmd.AddCommand(showCmd)
}
