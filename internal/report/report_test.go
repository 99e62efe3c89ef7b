package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-downloader/mktorrent/internal/history"
	"github.com/surge-downloader/mktorrent/internal/torrent"
)

func TestBackupTrackers_SortedCaseInsensitive(t *testing.T) {
	s := Summary{Trackers: []string{"udp://primary", "udp://b", "UDP://A", "udp://c"}}
	assert.Equal(t, []string{"UDP://A", "udp://b", "udp://c"}, s.BackupTrackers())
	assert.Nil(t, Summary{Trackers: []string{"udp://only"}}.BackupTrackers())
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "10 MiB (10,485,760 bytes)", FormatSize(10<<20))
	assert.Equal(t, "1000 B (1,000 bytes)", FormatSize(1000))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "(none)", FormatDate(nil))
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local).Unix()
	assert.Equal(t, "2024-05-06 07:08:09", FormatDate(&ts))
}

func TestRenderSummary(t *testing.T) {
	var hash [20]byte
	hash[19] = 0xff
	var buf bytes.Buffer
	err := RenderSummary(&buf, Summary{
		Name:        "dir",
		OutputPath:  "/out/dir.torrent",
		TotalSize:   6000,
		NumFiles:    3,
		NumPieces:   6,
		PieceLength: 1024,
		Nodes:       []torrent.Node{{Host: "router.example", Port: 6881}},
		Trackers:    []string{"udp://one", "udp://Two", "udp://three"},
		InfoHash:    hash,
	}, termenv.Ascii)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Successfully created torrent:")
	assert.Contains(t, out, "6 x 1.0 KiB")
	assert.Contains(t, out, "5.9 KiB (6,000 bytes)")
	assert.Contains(t, out, "router.example:6881")
	assert.Contains(t, out, "Private:")
	assert.Contains(t, out, "udp://one")
	assert.Contains(t, out, "00000000000000000000000000000000000000ff")
	assert.NotContains(t, out, "\x1b[", "ascii profile must not emit escapes")

	three := strings.Index(out, "    udp://three")
	two := strings.Index(out, "    udp://Two")
	require.True(t, three >= 0 && two >= 0)
	assert.Less(t, three, two)
}

func TestRenderSummary_NoneValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, Summary{Name: "x"}, termenv.Ascii))
	out := buf.String()
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "no")
}

func TestRenderTorrent(t *testing.T) {
	meta := &torrent.TorrentMeta{
		Announce:     "udp://one",
		AnnounceList: [][]string{{"udp://one"}, {"udp://two"}},
		Comment:      "hello",
		Info: torrent.Info{
			Name:        "dir",
			PieceLength: 16384,
			Pieces:      make([]byte, 40),
			Files: []torrent.FileEntry{
				{Path: []string{"a.txt"}, Length: 3},
				{Path: []string{"sub", "b.txt"}, Length: 4},
			},
		},
		Magnet: "magnet:?xt=urn:btih:abc",
	}
	var buf bytes.Buffer
	require.NoError(t, RenderTorrent(&buf, meta, ShowOptions{Files: true}, termenv.Ascii))

	out := buf.String()
	assert.Contains(t, out, "dir")
	assert.Contains(t, out, "2 x 16 KiB")
	assert.Contains(t, out, "udp://two")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "sub/b.txt")
	assert.Contains(t, out, "magnet:?xt=urn:btih:abc")
}

func TestProgressModel(t *testing.T) {
	m := newProgressModel(termenv.Ascii)

	next, cmd := m.Update(hashProgressMsg{done: 5, total: 10})
	assert.Nil(t, cmd)
	m = next.(progressModel)
	assert.Contains(t, m.View(), "5/10 pieces")

	// Late, smaller counts from slower workers do not move the bar back.
	next, _ = m.Update(hashProgressMsg{done: 3, total: 10})
	m = next.(progressModel)
	assert.Contains(t, m.View(), "5/10 pieces")

	next, _ = m.Update(tea.WindowSizeMsg{Width: 20})
	assert.Equal(t, 10, next.(progressModel).bar.Width)

	_, cmd = m.Update(hashDoneMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHashProgress_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := StartHashProgress(&buf)
	assert.Nil(t, p)

	// nil receivers are no-ops
	p.Update(1, 2)
	p.Stop()
	assert.Empty(t, buf.String())
}

func TestColorProfile_NonTerminal(t *testing.T) {
	assert.Equal(t, termenv.Ascii, ColorProfile(&bytes.Buffer{}))
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistory(&buf, nil, termenv.Ascii))
	assert.Equal(t, "No torrents recorded.\n", buf.String())

	buf.Reset()
	err := RenderHistory(&buf, []history.Record{{
		Name:       "movie",
		OutputPath: "/out/movie.torrent",
		InfoHash:   "00112233445566778899aabbccddeeff00112233",
		TotalSize:  10 << 20,
		NumPieces:  40,
		CreatedAt:  time.Date(2024, 5, 6, 7, 8, 0, 0, time.Local),
	}}, termenv.Ascii)
	require.NoError(t, err)
	out := buf.String()
	for _, want := range []string{"NAME", "INFO HASH", "movie", "/out/movie.torrent", "10 MiB", "40", "2024-05-06 07:08", "00112233445566778899aabbccddeeff00112233"} {
		assert.Contains(t, out, want)
	}
}
