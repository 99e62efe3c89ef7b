package torrent

import (
	"crypto/sha1"
	"os"
	"path/filepath"
	"testing"

	"github.com/anacrolix/torrent/bencode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTorrent_InfoHash(t *testing.T) {
	info := map[string]any{
		"name":         "file.txt",
		"piece length": int64(16384),
		"length":       int64(5),
		"pieces":       []byte("12345678901234567890"),
		"md5sum":       "5d41402abc4b2a76b9719d911017c592",
	}
	infoBytes, err := bencode.Marshal(info)
	require.NoError(t, err)
	rootBytes, err := bencode.Marshal(map[string]any{
		"announce":      "http://tracker",
		"comment":       "hi",
		"created by":    "someone",
		"creation date": int64(99),
		"url-list":      []any{"https://seed"},
		"info":          info,
	})
	require.NoError(t, err)

	meta, err := ParseTorrent(rootBytes)
	require.NoError(t, err)
	assert.Equal(t, sha1.Sum(infoBytes), meta.InfoHash)
	assert.Equal(t, "file.txt", meta.Info.Name)
	assert.Equal(t, int64(5), meta.Info.TotalLength())
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", meta.Info.MD5Sum)
	assert.Equal(t, "hi", meta.Comment)
	assert.Equal(t, "someone", meta.CreatedBy)
	assert.Equal(t, int64(99), meta.CreationDate)
	assert.Equal(t, []string{"https://seed"}, meta.URLList)
	assert.Equal(t, []string{"http://tracker"}, meta.Trackers())
	assert.False(t, meta.Info.Private)

	m, err := ParseMagnet(meta.Magnet)
	require.NoError(t, err)
	assert.Equal(t, meta.InfoHash, m.InfoHash)
}

func TestParseTorrent_Multifile(t *testing.T) {
	info := map[string]any{
		"name":         "dir",
		"piece length": int64(16384),
		"pieces":       []byte("1234567890123456789012345678901234567890"),
		"private":      int64(1),
		"files": []any{
			map[string]any{
				"length": int64(3),
				"path":   []any{[]byte("a.txt")},
				"md5sum": "abc",
			},
			map[string]any{
				"length": int64(4),
				"path":   []any{[]byte("sub"), []byte("b.txt")},
			},
		},
	}
	infoBytes, err := bencode.Marshal(info)
	require.NoError(t, err)
	rootBytes, err := bencode.Marshal(map[string]any{
		"announce":      "http://tracker",
		"announce-list": []any{[]any{"http://tracker"}, []any{}, []any{"udp://backup"}},
		"info":          info,
	})
	require.NoError(t, err)

	meta, err := ParseTorrent(rootBytes)
	require.NoError(t, err)
	assert.Equal(t, int64(7), meta.Info.TotalLength())
	assert.Equal(t, infoBytes, meta.InfoBytes)
	assert.True(t, meta.Info.Private)
	assert.Equal(t, 2, meta.Info.NumPieces())
	require.Len(t, meta.Info.Files, 2)
	assert.Equal(t, []string{"sub", "b.txt"}, meta.Info.Files[1].Path)
	assert.Equal(t, "abc", meta.Info.Files[0].MD5)
	assert.Equal(t, [][]string{{"http://tracker"}, {"udp://backup"}}, meta.AnnounceList)
	assert.Equal(t, []string{"http://tracker", "udp://backup"}, meta.Trackers())
}

func TestParseTorrent_Invalid(t *testing.T) {
	_, err := ParseTorrent([]byte("not bencode"))
	assert.Error(t, err)

	rootBytes, err := bencode.Marshal(map[string]any{
		"info": map[string]any{"name": "x", "piece length": int64(16384), "length": int64(1), "pieces": []byte("short")},
	})
	require.NoError(t, err)
	_, err = ParseTorrent(rootBytes)
	assert.Error(t, err)
}

func TestLoadTorrent(t *testing.T) {
	_, err := LoadTorrent(filepath.Join(t.TempDir(), "missing.torrent"))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
