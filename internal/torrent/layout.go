package torrent

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

// FileLayout maps the logical byte stream of a torrent onto its files. The
// stream is the concatenation of Files in order; zero-length files add no
// bytes.
type FileLayout struct {
	BaseDir     string
	Files       []FileEntry
	PieceLength int64
	TotalLength int64
}

func NewFileLayout(baseDir string, files []FileEntry, pieceLength int64) (*FileLayout, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base dir required")
	}
	if pieceLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPieceLength, pieceLength)
	}
	total := TotalLength(files)
	if total <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, total)
	}
	return &FileLayout{
		BaseDir:     baseDir,
		Files:       files,
		PieceLength: pieceLength,
		TotalLength: total,
	}, nil
}

func (fl *FileLayout) NumPieces() int {
	return PieceCount(fl.TotalLength, fl.PieceLength)
}

// PieceSize returns the byte length of piece i, or 0 if i is out of range.
// Every piece but the last is PieceLength long.
func (fl *FileLayout) PieceSize(pieceIndex int) int64 {
	total := fl.NumPieces()
	if pieceIndex < 0 || pieceIndex >= total {
		return 0
	}
	if pieceIndex == total-1 {
		return fl.TotalLength - int64(pieceIndex)*fl.PieceLength
	}
	return fl.PieceLength
}

func (fl *FileLayout) FilePath(i int) (string, error) {
	if i < 0 || i >= len(fl.Files) {
		return "", fmt.Errorf("file index out of range")
	}
	parts := append([]string{fl.BaseDir}, fl.Files[i].Path...)
	return filepath.Join(parts...), nil
}

// pieceStream reads the logical stream sequentially, opening each file in
// turn. It is not safe for concurrent use.
type pieceStream struct {
	layout    *FileLayout
	next      int
	cur       *os.File
	curPath   string
	remaining int64
	md5       hash.Hash
	sums      []string
}

func (fl *FileLayout) openStream(withMD5 bool) *pieceStream {
	s := &pieceStream{layout: fl}
	if withMD5 {
		s.sums = make([]string, len(fl.Files))
	}
	return s
}

// ReadFull fills buf from the stream, crossing file boundaries as needed.
func (s *pieceStream) ReadFull(buf []byte) error {
	for len(buf) > 0 {
		if s.cur == nil {
			if err := s.openNext(); err != nil {
				return err
			}
			continue
		}
		n := int64(len(buf))
		if n > s.remaining {
			n = s.remaining
		}
		read, err := io.ReadFull(s.cur, buf[:n])
		if s.md5 != nil {
			s.md5.Write(buf[:read])
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnreadableEntry, s.curPath, err)
		}
		buf = buf[n:]
		s.remaining -= n
		if s.remaining == 0 {
			s.closeCurrent()
		}
	}
	return nil
}

// openNext opens the next non-empty file. Empty files passed on the way are
// still opened so a vanished file is reported.
func (s *pieceStream) openNext() error {
	for s.next < len(s.layout.Files) {
		i := s.next
		s.next++
		path, err := s.layout.FilePath(i)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnreadableEntry, path, err)
		}
		if s.sums != nil {
			s.md5 = md5.New()
		}
		s.cur, s.curPath, s.remaining = f, path, s.layout.Files[i].Length
		if s.remaining > 0 {
			return nil
		}
		s.closeCurrent()
	}
	return fmt.Errorf("%w: stream ended early", ErrUnreadableEntry)
}

func (s *pieceStream) closeCurrent() {
	if s.cur == nil {
		return
	}
	_ = s.cur.Close()
	if s.md5 != nil {
		s.sums[s.next-1] = hex.EncodeToString(s.md5.Sum(nil))
		s.md5 = nil
	}
	s.cur = nil
}

// Finish visits any trailing empty files and returns the per-file MD5 sums
// (nil unless requested).
func (s *pieceStream) Finish() ([]string, error) {
	s.closeCurrent()
	for s.next < len(s.layout.Files) {
		i := s.next
		if s.layout.Files[i].Length != 0 {
			return nil, fmt.Errorf("%w: %s not fully read", ErrUnreadableEntry, s.layout.Files[i].RelPath())
		}
		s.next++
		path, err := s.layout.FilePath(i)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableEntry, path, err)
		}
		_ = f.Close()
		if s.sums != nil {
			s.sums[i] = hex.EncodeToString(md5.New().Sum(nil))
		}
	}
	return s.sums, nil
}

func (s *pieceStream) Close() {
	s.closeCurrent()
}
