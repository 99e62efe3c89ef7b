package torrent

import "path/filepath"

// FileEntry is one file of a multi-file torrent. Path holds the components
// relative to the torrent root; MD5 is a hex digest and only set when
// requested.
type FileEntry struct {
	Path   []string
	Length int64
	MD5    string
}

// RelPath joins the path components with the OS separator.
func (e FileEntry) RelPath() string {
	return filepath.Join(e.Path...)
}

// TotalLength sums the lengths of all entries.
func TotalLength(entries []FileEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Length
	}
	return total
}

// Node is a DHT bootstrap node.
type Node struct {
	Host string
	Port int
}

// Info mirrors the info dictionary of a metainfo file. Single-file torrents
// set Length (and optionally MD5Sum) and leave Files empty; multi-file
// torrents set Files.
type Info struct {
	Name        string
	PieceLength int64
	Pieces      []byte
	Private     bool
	Source      string
	Length      int64
	MD5Sum      string
	Files       []FileEntry
}

// MultiFile reports whether the info describes a directory torrent.
func (i Info) MultiFile() bool {
	return len(i.Files) > 0
}

func (i Info) TotalLength() int64 {
	if !i.MultiFile() {
		return i.Length
	}
	return TotalLength(i.Files)
}

// NumPieces is the number of 20-byte digests in Pieces.
func (i Info) NumPieces() int {
	return len(i.Pieces) / pieceHashSize
}

// Metainfo is the outer dictionary of a .torrent file. Empty optional fields
// are omitted on encoding; CreationDate is omitted when nil.
type Metainfo struct {
	Info         Info
	Announce     string
	AnnounceList [][]string
	Nodes        []Node
	URLList      []string
	CreationDate *int64
	CreatedBy    string
	Comment      string
}

// TorrentMeta is the parsed view of an existing .torrent file.
type TorrentMeta struct {
	Announce     string
	AnnounceList [][]string
	URLList      []string
	Comment      string
	CreatedBy    string
	CreationDate int64
	Info         Info
	InfoHash     [20]byte
	InfoBytes    []byte
	Magnet       string
}
