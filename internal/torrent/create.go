package torrent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Request describes one torrent to build.
type Request struct {
	// Path is the file or directory to share.
	Path string
	// PieceLengthKiB overrides the automatic piece length when non-zero.
	// Negative values are ErrInvalidPieceLength.
	PieceLengthKiB int64
	Exclude        Exclusions
	IncludeMD5     bool
	Threads        int
	Options        Options
	// Progress receives hashing progress; see HashOptions.
	Progress func(done, total int)
	Logger   *zap.Logger
}

// Result is a built torrent, not yet written anywhere.
type Result struct {
	Metainfo    *Metainfo
	Bytes       []byte
	InfoHash    [20]byte
	TotalSize   int64
	PieceLength int64
	NumPieces   int
	NumFiles    int
}

// Create scans, hashes and encodes the torrent described by req.
func Create(ctx context.Context, req Request) (*Result, error) {
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := req.Options.Normalize()
	if err != nil {
		return nil, err
	}

	var pieceLength int64
	if req.PieceLengthKiB != 0 {
		if pieceLength, err = PieceLengthFromKiB(req.PieceLengthKiB); err != nil {
			return nil, err
		}
	}

	root, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableEntry, req.Path, err)
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableEntry, req.Path, err)
	}

	payload := Payload{Name: filepath.Base(root)}
	switch {
	case fi.Mode().IsRegular():
		if !req.Exclude.IsEmpty() {
			logger.Warn("exclusions are ignored for a single-file torrent", zap.String("path", root))
		}
		payload.SingleFile = true
		payload.Files = []FileEntry{{Path: []string{payload.Name}, Length: fi.Size()}}
	case fi.IsDir():
		logger.Debug("scanning directory", zap.String("path", root))
		files, err := Enumerate(root, req.Exclude, logger)
		if err != nil {
			return nil, err
		}
		payload.Files = files
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedNodeType, root, fi.Mode().Type())
	}

	total := TotalLength(payload.Files)
	if total == 0 {
		return nil, fmt.Errorf("%w: %s has no data, check files and exclusions", ErrInvalidSize, req.Path)
	}

	if pieceLength == 0 {
		if pieceLength, err = SelectPieceLength(total); err != nil {
			return nil, err
		}
	}
	logger.Debug("hashing",
		zap.Int64("total_size", total),
		zap.Int("files", len(payload.Files)),
		zap.Int64("piece_length", pieceLength),
		zap.Int("pieces", PieceCount(total, pieceLength)),
	)

	hashOpts := HashOptions{
		Concurrency: req.Threads,
		IncludeMD5:  req.IncludeMD5,
		Progress:    req.Progress,
	}
	var table *PieceTable
	if payload.SingleFile {
		var sum string
		table, sum, err = HashFile(ctx, root, payload.Files[0].Length, pieceLength, hashOpts)
		payload.Files[0].MD5 = sum
	} else {
		table, payload.Files, err = HashFiles(ctx, root, payload.Files, pieceLength, hashOpts)
	}
	if err != nil {
		return nil, err
	}
	payload.PieceLength = pieceLength
	payload.Pieces = table

	mi, err := Build(payload, opts)
	if err != nil {
		return nil, err
	}
	data, err := mi.Encode()
	if err != nil {
		return nil, err
	}
	hash, err := mi.InfoHash()
	if err != nil {
		return nil, err
	}

	return &Result{
		Metainfo:    mi,
		Bytes:       data,
		InfoHash:    hash,
		TotalSize:   total,
		PieceLength: pieceLength,
		NumPieces:   table.Len(),
		NumFiles:    len(payload.Files),
	}, nil
}
