// Package report renders what the create and show commands print.
package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/surge-downloader/mktorrent/internal/torrent"
)

const none = "(none)"

// Summary is the information printed after a torrent has been written.
type Summary struct {
	Name         string
	OutputPath   string
	TotalSize    int64
	NumFiles     int
	NumPieces    int
	PieceLength  int64
	Comment      string
	Private      bool
	CreationDate *int64
	Nodes        []torrent.Node
	WebSeeds     []string
	Trackers     []string
	InfoHash     [20]byte
	Magnet       string
	Elapsed      time.Duration
}

// NewSummary collects the summary fields of a created torrent.
func NewSummary(res *torrent.Result, outputPath string, elapsed time.Duration) Summary {
	mi := res.Metainfo
	magnet, _ := mi.MagnetLink()
	return Summary{
		Name:         mi.Info.Name,
		OutputPath:   outputPath,
		TotalSize:    res.TotalSize,
		NumFiles:     res.NumFiles,
		NumPieces:    res.NumPieces,
		PieceLength:  res.PieceLength,
		Comment:      mi.Comment,
		Private:      mi.Info.Private,
		CreationDate: mi.CreationDate,
		Nodes:        mi.Nodes,
		WebSeeds:     mi.URLList,
		Trackers:     mi.Trackers(),
		InfoHash:     res.InfoHash,
		Magnet:       magnet,
		Elapsed:      elapsed,
	}
}

// BackupTrackers returns every tracker but the primary one, sorted
// case-insensitively.
func (s Summary) BackupTrackers() []string {
	if len(s.Trackers) < 2 {
		return nil
	}
	backup := append([]string(nil), s.Trackers[1:]...)
	sort.SliceStable(backup, func(i, j int) bool {
		return strings.ToLower(backup[i]) < strings.ToLower(backup[j])
	})
	return backup
}

// FormatSize renders a byte count with binary units and the exact count.
func FormatSize(n int64) string {
	return fmt.Sprintf("%s (%s bytes)", humanize.IBytes(uint64(n)), humanize.Comma(n))
}

// FormatDate renders a unix timestamp in local time.
func FormatDate(ts *int64) string {
	if ts == nil {
		return none
	}
	return time.Unix(*ts, 0).Format("2006-01-02 15:04:05")
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return none
	}
	return strings.Join(list, ", ")
}

// RenderSummary writes the creation summary to w.
func RenderSummary(w io.Writer, s Summary, profile termenv.Profile) error {
	st := newStyles(newRenderer(w, profile))

	nodes := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		nodes[i] = fmt.Sprintf("%s:%d", n.Host, n.Port)
	}
	private := "no"
	if s.Private {
		private = "yes"
	}
	primary := none
	if len(s.Trackers) > 0 {
		primary = s.Trackers[0]
	}

	var b strings.Builder
	b.WriteString(st.Title.Render("Successfully created torrent:"))
	b.WriteString("\n")
	row := func(label, value string) {
		b.WriteString("  ")
		b.WriteString(st.Label.Render(label + ":"))
		b.WriteString(st.Value.Render(value))
		b.WriteString("\n")
	}
	row("Name", s.Name)
	row("File", s.OutputPath)
	row("Size", FormatSize(s.TotalSize))
	row("Files", fmt.Sprint(s.NumFiles))
	row("Pieces", fmt.Sprintf("%d x %s", s.NumPieces, humanize.IBytes(uint64(s.PieceLength))))
	row("Comment", orNone(s.Comment))
	row("Private", private)
	row("Creation date", FormatDate(s.CreationDate))
	row("DHT bootstrap nodes", joinOrNone(nodes))
	row("Webseeds", joinOrNone(s.WebSeeds))
	row("Primary tracker", primary)
	row("Backup trackers", "")
	backup := s.BackupTrackers()
	if len(backup) == 0 {
		b.WriteString("    " + st.Dim.Render(none) + "\n")
	}
	for _, t := range backup {
		b.WriteString("    " + t + "\n")
	}
	row("Info hash", st.Hash.Render(hex.EncodeToString(s.InfoHash[:])))
	if s.Elapsed > 0 {
		row("Elapsed", s.Elapsed.Round(time.Millisecond).String())
	}

	_, err := io.WriteString(w, b.String())
	return err
}
