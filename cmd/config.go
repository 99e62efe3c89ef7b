package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surge-downloader/mktorrent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the settings file",
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the settings file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSettings: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), settingsPath(cmd))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a settings file with the default values",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSettings: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := settingsPath(cmd)

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.EnsureDirs(); err != nil {
			return err
		}
		if err := config.SaveSettings(path, config.DefaultSettings()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func settingsPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.GetSettingsPath()
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing settings file")
	configCmd.AddCommand(configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
