package torrent

import (
	"bytes"
	"fmt"
	"os"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
)

// md5Fields picks the md5sum keys that the metainfo package does not model.
type md5Fields struct {
	MD5Sum string `bencode:"md5sum,omitempty"`
	Files  []struct {
		MD5Sum string `bencode:"md5sum,omitempty"`
	} `bencode:"files,omitempty"`
}

// LoadTorrent reads and parses a .torrent file.
func LoadTorrent(path string) (*TorrentMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return ParseTorrent(data)
}

func ParseTorrent(data []byte) (*TorrentMeta, error) {
	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	parsedInfo, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, err
	}

	info := Info{
		Name:        parsedInfo.BestName(),
		PieceLength: parsedInfo.PieceLength,
		Pieces:      append([]byte(nil), parsedInfo.Pieces...),
		Private:     parsedInfo.Private != nil && *parsedInfo.Private,
		Source:      parsedInfo.Source,
		Length:      parsedInfo.Length,
	}
	if info.Name == "" {
		info.Name = parsedInfo.Name
	}
	if len(parsedInfo.Files) > 0 {
		for _, f := range parsedInfo.UpvertedFiles() {
			info.Files = append(info.Files, FileEntry{
				Path:   append([]string(nil), f.BestPath()...),
				Length: f.Length,
			})
		}
		info.Length = 0
	}

	var sums md5Fields
	if err := bencode.Unmarshal(mi.InfoBytes, &sums); err == nil {
		info.MD5Sum = sums.MD5Sum
		for i := range sums.Files {
			if i < len(info.Files) {
				info.Files[i].MD5 = sums.Files[i].MD5Sum
			}
		}
	}
	if err := validateInfo(info); err != nil {
		return nil, err
	}

	hash := mi.HashInfoBytes()

	meta := &TorrentMeta{
		Info:         info,
		InfoHash:     hash,
		InfoBytes:    append([]byte(nil), mi.InfoBytes...),
		Announce:     mi.Announce,
		URLList:      append([]string(nil), mi.UrlList...),
		Comment:      mi.Comment,
		CreatedBy:    mi.CreatedBy,
		CreationDate: mi.CreationDate,
	}
	for _, tier := range mi.AnnounceList {
		if len(tier) == 0 {
			continue
		}
		meta.AnnounceList = append(meta.AnnounceList, append([]string(nil), tier...))
	}
	meta.Magnet = MagnetLink(meta.InfoHash, info.Name, meta.Trackers())

	return meta, nil
}

// Trackers returns the distinct tracker URLs in announce order.
func (m *TorrentMeta) Trackers() []string {
	return flattenTrackers(m.Announce, m.AnnounceList)
}

func validateInfo(info Info) error {
	if info.PieceLength <= 0 || info.Name == "" {
		return fmt.Errorf("invalid info dict")
	}
	if len(info.Pieces) == 0 || len(info.Pieces)%pieceHashSize != 0 {
		return fmt.Errorf("invalid info dict: pieces length %d", len(info.Pieces))
	}
	if info.Length == 0 && len(info.Files) == 0 {
		return fmt.Errorf("missing length/files")
	}
	return nil
}
