package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/mktorrent/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "mktorrent version %s (built %s)\n", version.Version, version.BuildTime)
		if !check {
			return nil
		}

		info, err := version.CheckForUpdate(cmd.Context(), version.Version, "")
		if err != nil {
			return err
		}
		switch {
		case info == nil:
			fmt.Fprintln(out, "Development build, skipping update check")
		case info.UpdateAvailable:
			fmt.Fprintf(out, "Update available: %s\n%s\n", info.LatestVersion, info.ReleaseURL)
		default:
			fmt.Fprintln(out, "You are running the latest version")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
