package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/surge-downloader/mktorrent/internal/history"
)

// RenderHistory writes records as a table, newest first as given.
func RenderHistory(w io.Writer, records []history.Record, profile termenv.Profile) error {
	st := newStyles(newRenderer(w, profile))
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, st.Dim.Render("No torrents recorded."))
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.Dim).
		Headers("CREATED", "NAME", "SIZE", "PIECES", "INFO HASH", "OUTPUT").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.Title.Padding(0, 1)
			case col == 4:
				return st.Hash.Padding(0, 1)
			default:
				return st.Value.Padding(0, 1)
			}
		})
	for _, r := range records {
		t.Row(
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Name,
			humanize.IBytes(uint64(r.TotalSize)),
			fmt.Sprint(r.NumPieces),
			r.InfoHash,
			r.OutputPath,
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
