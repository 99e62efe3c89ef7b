package torrent

import "fmt"

const (
	KiB = 1 << 10
	MiB = KiB * KiB

	MinPieceLength     = 16 * KiB
	MaxPieceLength     = 64 * MiB
	initialPieceLength = 256 * KiB

	maxTargetPieces = 2000
	minTargetPieces = 8
)

// SelectPieceLength picks a piece length for a torrent of totalSize bytes.
//
// Starting at 256 KiB the length is doubled while there would be more than
// 2000 pieces and halved while there would be fewer than 8. The result is
// clamped to [16 KiB, 64 MiB].
func SelectPieceLength(totalSize int64) (int64, error) {
	if totalSize <= 0 {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidSize, totalSize)
	}
	if totalSize < MinPieceLength {
		return MinPieceLength, nil
	}

	pieceLength := int64(initialPieceLength)
	// Float division matches the integer-free ratio test; a piece count of
	// 2000.5 must still trigger a doubling.
	for float64(totalSize)/float64(pieceLength) > maxTargetPieces {
		pieceLength *= 2
	}
	for float64(totalSize)/float64(pieceLength) < minTargetPieces {
		pieceLength /= 2
	}

	return max(min(pieceLength, MaxPieceLength), MinPieceLength), nil
}

// PieceLengthFromKiB converts a caller supplied override in KiB to bytes.
// Range and multiple-of-16 checks are left to the caller.
func PieceLengthFromKiB(kib int64) (int64, error) {
	if kib <= 0 {
		return 0, fmt.Errorf("%w: %d KiB", ErrInvalidPieceLength, kib)
	}
	if kib > (1<<62)/KiB {
		return 0, fmt.Errorf("%w: %d KiB overflows", ErrInvalidPieceLength, kib)
	}
	return kib * KiB, nil
}

// PieceCount returns ceil(totalSize / pieceLength).
func PieceCount(totalSize, pieceLength int64) int {
	if totalSize <= 0 || pieceLength <= 0 {
		return 0
	}
	return int((totalSize + pieceLength - 1) / pieceLength)
}
