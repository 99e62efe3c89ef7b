package torrent

import (
	"context"
	"crypto/sha1"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const pieceHashSize = sha1.Size

// PieceTable holds one SHA-1 digest per piece, addressed by piece index.
// Each slot is written exactly once, by the worker that hashed the piece, so
// concurrent writers never overlap and need no lock.
type PieceTable struct {
	digests []byte
}

func newPieceTable(count int) *PieceTable {
	return &PieceTable{digests: make([]byte, count*pieceHashSize)}
}

func (t *PieceTable) set(index int, sum [pieceHashSize]byte) {
	copy(t.digests[index*pieceHashSize:], sum[:])
}

// Len returns the number of pieces.
func (t *PieceTable) Len() int {
	return len(t.digests) / pieceHashSize
}

// Piece returns the digest of piece i.
func (t *PieceTable) Piece(i int) [pieceHashSize]byte {
	var sum [pieceHashSize]byte
	copy(sum[:], t.digests[i*pieceHashSize:])
	return sum
}

// Bytes returns the concatenated digests in ascending piece order, the
// value of the "pieces" key.
func (t *PieceTable) Bytes() []byte {
	return t.digests
}

// HashOptions tunes a hashing run.
type HashOptions struct {
	// Concurrency is the requested number of hashing workers. The pool never
	// exceeds the number of logical CPUs; values below 1 mean 1.
	Concurrency int
	// IncludeMD5 computes a whole-file MD5 for each entry.
	IncludeMD5 bool
	// Progress, if set, is called after each piece is hashed with the number
	// of finished pieces and the total. It may be called from several
	// goroutines at once.
	Progress func(done, total int)
}

func (o HashOptions) workers() int {
	n := min(o.Concurrency, runtime.NumCPU())
	if n < 1 {
		n = 1
	}
	return n
}

// HashFile hashes the first length bytes of a single file, the size
// recorded when the file was scanned. Bytes past length are ignored; a file
// that has become shorter is ErrUnreadableEntry. The returned MD5 is empty
// unless requested.
func HashFile(ctx context.Context, path string, length, pieceLength int64, opts HashOptions) (*PieceTable, string, error) {
	entries := []FileEntry{{Path: []string{filepath.Base(path)}, Length: length}}
	layout, err := NewFileLayout(filepath.Dir(path), entries, pieceLength)
	if err != nil {
		return nil, "", err
	}
	table, sums, err := hashLayout(ctx, layout, opts)
	if err != nil {
		return nil, "", err
	}
	var sum string
	if sums != nil {
		sum = sums[0]
	}
	return table, sum, nil
}

// HashFiles hashes the concatenation of entries, resolved against root, in
// the given order. Pieces may span file boundaries. The returned entries
// are copies of the input with MD5 filled in when requested.
func HashFiles(ctx context.Context, root string, entries []FileEntry, pieceLength int64, opts HashOptions) (*PieceTable, []FileEntry, error) {
	layout, err := NewFileLayout(root, entries, pieceLength)
	if err != nil {
		return nil, nil, err
	}
	table, sums, err := hashLayout(ctx, layout, opts)
	if err != nil {
		return nil, nil, err
	}
	out := make([]FileEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if sums != nil {
			out[i].MD5 = sums[i]
		}
	}
	return table, out, nil
}

// hashLayout reads the stream one piece at a time on the calling goroutine
// and hands each piece to the worker pool. Submission blocks once every
// worker is busy, so at most workers+1 piece buffers are alive. The first
// error stops submission; results are only returned after all workers have
// exited.
func hashLayout(ctx context.Context, layout *FileLayout, opts HashOptions) (*PieceTable, []string, error) {
	total := layout.NumPieces()
	table := newPieceTable(total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	bufSize := min(layout.PieceLength, layout.TotalLength)
	buffers := sync.Pool{New: func() any {
		b := make([]byte, bufSize)
		return &b
	}}

	stream := layout.openStream(opts.IncludeMD5)
	defer stream.Close()

	var done atomic.Int64
	var readErr error
	for i := 0; i < total; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		bp := buffers.Get().(*[]byte)
		buf := (*bp)[:layout.PieceSize(i)]
		if err := stream.ReadFull(buf); err != nil {
			buffers.Put(bp)
			readErr = err
			break
		}

		index := i
		g.Go(func() error {
			defer buffers.Put(bp)
			table.set(index, sha1.Sum(buf))
			n := int(done.Add(1))
			if opts.Progress != nil {
				opts.Progress(n, total)
			}
			return nil
		})
	}

	waitErr := g.Wait()
	switch {
	case readErr != nil:
		return nil, nil, readErr
	case waitErr != nil:
		return nil, nil, waitErr
	case ctx.Err() != nil:
		return nil, nil, ctx.Err()
	}

	sums, err := stream.Finish()
	if err != nil {
		return nil, nil, err
	}
	return table, sums, nil
}
