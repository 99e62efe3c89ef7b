package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/surge-downloader/mktorrent/internal/torrent"
)

// ShowOptions selects the optional parts of RenderTorrent.
type ShowOptions struct {
	Files bool
}

// RenderTorrent writes a description of a parsed .torrent file to w.
func RenderTorrent(w io.Writer, meta *torrent.TorrentMeta, opts ShowOptions, profile termenv.Profile) error {
	st := newStyles(newRenderer(w, profile))
	info := meta.Info

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(st.Label.Render(label + ":"))
		b.WriteString(value)
		b.WriteString("\n")
	}

	private := "no"
	if info.Private {
		private = "yes"
	}
	var date *int64
	if meta.CreationDate != 0 {
		date = &meta.CreationDate
	}

	row("Name", info.Name)
	row("Size", FormatSize(info.TotalLength()))
	if info.MultiFile() {
		row("Files", fmt.Sprint(len(info.Files)))
	}
	row("Pieces", fmt.Sprintf("%d x %s", info.NumPieces(), humanize.IBytes(uint64(info.PieceLength))))
	row("Private", private)
	row("Source", orNone(info.Source))
	row("Comment", orNone(meta.Comment))
	row("Created by", orNone(meta.CreatedBy))
	row("Creation date", FormatDate(date))
	row("Trackers", "")
	trackers := meta.Trackers()
	if len(trackers) == 0 {
		b.WriteString("    " + st.Dim.Render(none) + "\n")
	}
	for _, t := range trackers {
		b.WriteString("    " + t + "\n")
	}
	row("Webseeds", joinOrNone(meta.URLList))
	row("Info hash", st.Hash.Render(hex.EncodeToString(meta.InfoHash[:])))
	row("Magnet", meta.Magnet)

	if opts.Files && info.MultiFile() {
		b.WriteString(st.Title.Render("Files:") + "\n")
		for _, f := range info.Files {
			fmt.Fprintf(&b, "    %s %s\n", strings.Join(f.Path, "/"), st.Dim.Render("("+humanize.IBytes(uint64(f.Length))+")"))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
