package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/surge-downloader/mktorrent/internal/config"
	"github.com/surge-downloader/mktorrent/internal/history"
	"github.com/surge-downloader/mktorrent/internal/logging"
	"github.com/surge-downloader/mktorrent/internal/version"
)

// skipSettings marks commands that must run without a readable settings
// file.
const skipSettings = "skip-settings"

// Set by PersistentPreRunE before any command runs.
var (
	settings *config.Settings
	logger   = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mktorrent <target>",
	Short: "Create BitTorrent metainfo (.torrent) files",
	Long: `mktorrent builds a .torrent file for a file or directory.

Running it with a target is the same as "mktorrent create <target>".`,
	Version:           version.Version,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		history.CloseDB()
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runCreate(cmd, args[0])
	},
}

// setup loads settings, builds the logger and points the history store at
// its database.
func setup(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if _, ok := cmd.Annotations[skipSettings]; ok {
		settings = config.DefaultSettings()
		return nil
	}
	s, err := config.LoadSettings(cfgPath)
	if err != nil {
		return err
	}
	settings = s

	level := s.Log.Level
	if verbose {
		level = "debug"
	}
	l, err := logging.NewLogger(cmd.ErrOrStderr(), level, s.Log.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	logger = l

	history.Configure(config.GetHistoryPath())
	logger.Debug("settings loaded",
		zap.String("config", cfgPath),
		zap.Int("threads", s.Threads),
		zap.Bool("history", s.History.Enabled),
	)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the settings file (default: config.json in the config directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	addCreateFlags(rootCmd.Flags())
	rootCmd.SetVersionTemplate("mktorrent version {{.Version}}\n")
}
