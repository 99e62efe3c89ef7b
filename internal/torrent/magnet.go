package torrent

import (
	"fmt"

	"github.com/anacrolix/torrent/metainfo"
)

// Magnet is the parsed form of a magnet link.
type Magnet struct {
	InfoHash    [20]byte
	Trackers    []string
	DisplayName string
}

// MagnetLink returns a v1 magnet URI for a torrent.
func MagnetLink(infoHash [20]byte, name string, trackers []string) string {
	m := metainfo.Magnet{
		InfoHash:    metainfo.Hash(infoHash),
		DisplayName: name,
		Trackers:    append([]string(nil), trackers...),
	}
	return m.String()
}

// MagnetLink returns the magnet URI of a built torrent, listing every
// tracker.
func (m *Metainfo) MagnetLink() (string, error) {
	hash, err := m.InfoHash()
	if err != nil {
		return "", err
	}
	return MagnetLink(hash, m.Info.Name, m.Trackers()), nil
}

// Trackers returns the distinct tracker URLs in announce order.
func (m *Metainfo) Trackers() []string {
	return flattenTrackers(m.Announce, m.AnnounceList)
}

func flattenTrackers(announce string, tiers [][]string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	add(announce)
	for _, tier := range tiers {
		for _, u := range tier {
			add(u)
		}
	}
	return out
}

// ParseMagnet parses a magnet URI that carries a v1 (btih) info hash.
func ParseMagnet(raw string) (*Magnet, error) {
	m, err := metainfo.ParseMagnetUri(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: magnet link: %w", ErrInvalidMetadataField, err)
	}
	if m.InfoHash == (metainfo.Hash{}) {
		return nil, fmt.Errorf("%w: magnet link has no v1 info hash", ErrInvalidMetadataField)
	}

	out := &Magnet{
		Trackers:    append([]string(nil), m.Trackers...),
		DisplayName: m.DisplayName,
	}
	copy(out.InfoHash[:], m.InfoHash[:])
	return out, nil
}
