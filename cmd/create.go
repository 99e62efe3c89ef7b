package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/surge-downloader/mktorrent/internal/clipboard"
	"github.com/surge-downloader/mktorrent/internal/history"
	"github.com/surge-downloader/mktorrent/internal/report"
	"github.com/surge-downloader/mktorrent/internal/torrent"
	"github.com/surge-downloader/mktorrent/internal/trackers"
	"github.com/surge-downloader/mktorrent/internal/version"
)

// Values accepted by --date besides explicit timestamps.
const (
	dateNow  = -1
	dateOmit = -2
)

var createCmd = &cobra.Command{
	Use:   "create <target>",
	Short: "Create a .torrent file for a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args[0])
	},
}

func init() {
	addCreateFlags(createCmd.Flags())
	rootCmd.AddCommand(createCmd)
}

// addCreateFlags registers the create flags on fs. The root command and the
// create subcommand share them.
func addCreateFlags(fs *pflag.FlagSet) {
	fs.StringArrayP("tracker", "t", nil, "Tracker announce URL, abbreviation or bestN (repeatable)")
	fs.StringArray("node", nil, "DHT bootstrap node as host,port (repeatable)")
	fs.Int64P("piece-length", "p", 0, "Piece length in KiB (0 selects one automatically)")
	fs.BoolP("private", "P", false, "Set the private flag")
	fs.StringP("comment", "c", "", "Comment stored in the torrent (empty omits it)")
	fs.StringP("source", "s", "", "Source string stored in the info dictionary")
	fs.BoolP("force", "f", false, "Never ask for confirmation")
	fs.BoolP("quiet", "q", false, "Print nothing on success")
	fs.StringP("output", "o", "", "Output file or directory (default: <name>.torrent in the working directory)")
	fs.StringArrayP("exclude", "e", nil, "Path to exclude (repeatable)")
	fs.StringArray("exclude-pattern", nil, "Regular expression excluding matching paths (repeatable)")
	fs.StringArray("exclude-pattern-ci", nil, "Case-insensitive --exclude-pattern (repeatable)")
	fs.Int64P("date", "d", dateNow, "Creation date as a unix timestamp, -1 for now, -2 to omit")
	fs.StringP("name", "n", "", "Torrent name (default: base name of the target)")
	fs.Int("threads", 0, "Hashing workers (default: threads from the settings file)")
	fs.Bool("md5", false, "Include per-file md5sum values")
	fs.StringArray("webseed", nil, "Web seed URL (repeatable)")
	fs.Bool("no-created-by", false, "Omit the created by key")
	fs.Bool("copy-magnet", false, "Copy the magnet link to the clipboard")
	fs.Bool("no-history", false, "Do not record the torrent in the history database")
	_ = fs.MarkHidden("no-created-by")
}

func runCreate(cmd *cobra.Command, target string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	trackerArgs, _ := flags.GetStringArray("tracker")
	nodeArgs, _ := flags.GetStringArray("node")
	pieceKiB, _ := flags.GetInt64("piece-length")
	private, _ := flags.GetBool("private")
	comment, _ := flags.GetString("comment")
	source, _ := flags.GetString("source")
	force, _ := flags.GetBool("force")
	quiet, _ := flags.GetBool("quiet")
	verbose, _ := flags.GetBool("verbose")
	output, _ := flags.GetString("output")
	excludePaths, _ := flags.GetStringArray("exclude")
	excludePatterns, _ := flags.GetStringArray("exclude-pattern")
	excludePatternsCI, _ := flags.GetStringArray("exclude-pattern-ci")
	date, _ := flags.GetInt64("date")
	name, _ := flags.GetString("name")
	threads, _ := flags.GetInt("threads")
	md5sum, _ := flags.GetBool("md5")
	webSeeds, _ := flags.GetStringArray("webseed")
	noCreatedBy, _ := flags.GetBool("no-created-by")
	copyMagnet, _ := flags.GetBool("copy-magnet")
	noHistory, _ := flags.GetBool("no-history")

	if verbose && quiet {
		return errors.New("--verbose and --quiet cannot be used together")
	}

	p := newPrompter(cmd, force)

	if err := checkPieceLength(p, pieceKiB); err != nil {
		return err
	}
	if !flags.Changed("threads") {
		threads = settings.Threads
	}
	if threads <= 0 {
		return fmt.Errorf("--threads must be positive, got %d", threads)
	}

	announce := trackers.Dedupe(trackers.Expand(trackerArgs, settings.Abbreviations()))
	if invalid := trackers.ValidateAll(announce); len(invalid) > 0 {
		for _, t := range invalid {
			logger.Warn("tracker URL looks invalid", zap.String("tracker", t))
		}
		if !p.confirm("Some tracker URLs look invalid. Continue anyway?") {
			return errAborted
		}
	}

	if private && len(nodeArgs) > 0 {
		return fmt.Errorf("%w: DHT bootstrap nodes cannot be used with a private torrent", torrent.ErrIncompatibleOptions)
	}
	nodes, err := trackers.ParseNodes(nodeArgs)
	if err != nil {
		logger.Warn("skipping invalid DHT nodes", zap.Error(err))
		if !p.confirm("Some DHT nodes are invalid and will be skipped. Continue?") {
			return errAborted
		}
	}

	opts := torrent.Options{
		Nodes:     nodes,
		WebSeeds:  webSeeds,
		Private:   private,
		Source:    source,
		Name:      name,
		Advertise: settings.Advertise,
	}
	if flags.Changed("comment") {
		opts.Comment = &comment
	}
	if !noCreatedBy {
		opts.CreatedBy = version.CreatedBy()
	}
	switch {
	case date == dateNow:
		opts.Date = torrent.DateNow
	case date == dateOmit:
		opts.Date = torrent.DateOmit
	case date >= 0:
		opts.Date = torrent.DateExplicit
		opts.Timestamp = date
	default:
		return fmt.Errorf("%w: --date must be a timestamp, -1 or -2, got %d", torrent.ErrInvalidMetadataField, date)
	}
	// Reject bad metadata before any network or disk work.
	opts, err = opts.Normalize()
	if err != nil {
		return err
	}

	announce, err = trackers.ResolveBest(ctx, announce, settings.BestTrackersURL, nil)
	if err != nil {
		return err
	}
	opts.Trackers = announce

	exclude, err := buildExclusions(excludePaths, excludePatterns, excludePatternsCI)
	if err != nil {
		return err
	}
	for _, path := range exclude.Paths {
		if _, err := os.Lstat(path); err != nil {
			logger.Warn("excluded path does not exist", zap.String("path", path))
		}
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("%w: %w", torrent.ErrUnreadableEntry, err)
	}
	torrentName := opts.Name
	if torrentName == "" {
		torrentName = filepath.Base(absTarget)
	}
	outPath, err := resolveOutputPath(output, torrentName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(outPath); err == nil {
		if !p.confirm(fmt.Sprintf("%s already exists. Overwrite?", outPath)) {
			return errAborted
		}
	}

	var progress *report.HashProgress
	if !quiet {
		progress = report.StartHashProgress(cmd.ErrOrStderr())
	}
	start := time.Now()
	res, err := torrent.Create(ctx, torrent.Request{
		Path:           absTarget,
		PieceLengthKiB: pieceKiB,
		Exclude:        exclude,
		IncludeMD5:     md5sum,
		Threads:        threads,
		Options:        opts,
		Progress:       progress.Update,
		Logger:         logger,
	})
	progress.Stop()
	if err != nil {
		return err
	}

	if err := torrent.WriteFile(ctx, outPath, res.Bytes); err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Debug("torrent written",
		zap.String("path", outPath),
		zap.Int("pieces", res.NumPieces),
		zap.Duration("elapsed", elapsed),
	)

	if settings.History.Enabled && !noHistory {
		_, err := history.Add(history.Record{
			Name:        res.Metainfo.Info.Name,
			TargetPath:  absTarget,
			OutputPath:  outPath,
			InfoHash:    history.InfoHashHex(res.InfoHash),
			TotalSize:   res.TotalSize,
			PieceLength: res.PieceLength,
			NumPieces:   res.NumPieces,
			NumFiles:    res.NumFiles,
			Private:     res.Metainfo.Info.Private,
		})
		if err != nil {
			logger.Warn("failed to record history", zap.Error(err))
		}
	}

	if !quiet {
		out := cmd.OutOrStdout()
		if err := report.RenderSummary(out, report.NewSummary(res, outPath, elapsed), report.ColorProfile(out)); err != nil {
			return err
		}
	}

	if copyMagnet {
		link, err := res.Metainfo.MagnetLink()
		if err == nil {
			err = clipboard.CopyMagnet(link)
		}
		if err != nil {
			logger.Warn("failed to copy magnet link", zap.Error(err))
		}
	}
	return nil
}

// checkPieceLength rejects negative lengths and asks before using unusual
// ones.
func checkPieceLength(p *prompter, kib int64) error {
	if kib < 0 {
		return fmt.Errorf("%w: piece length must not be negative, got %d KiB", torrent.ErrInvalidPieceLength, kib)
	}
	if kib == 0 {
		return nil
	}
	if kib < 16 && !p.confirm("Piece lengths below 16 KiB are not recommended. Continue?") {
		return errAborted
	}
	if kib > 16384 && !p.confirm("Piece lengths above 16384 KiB are not recommended. Continue?") {
		return errAborted
	}
	if kib%16 != 0 && !p.confirm("Piece lengths that are not a multiple of 16 KiB are not recommended. Continue?") {
		return errAborted
	}
	return nil
}

// buildExclusions compiles the exclusion flags.
func buildExclusions(paths, patterns, patternsCI []string) (torrent.Exclusions, error) {
	ex := torrent.Exclusions{Paths: paths}
	compile := func(expr string) error {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
		}
		ex.Patterns = append(ex.Patterns, re)
		return nil
	}
	for _, expr := range patterns {
		if err := compile(expr); err != nil {
			return ex, err
		}
	}
	for _, expr := range patternsCI {
		if err := compile("(?i)" + expr); err != nil {
			return ex, err
		}
	}
	return ex, nil
}
