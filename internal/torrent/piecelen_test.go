package torrent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPieceLength(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want int64
	}{
		{"one byte", 1, 16 * KiB},
		{"just under floor", 16*KiB - 1, 16 * KiB},
		{"exactly floor", 16 * KiB, 16 * KiB},
		{"1 MiB halves", 1 * MiB, 128 * KiB},
		{"10 MiB", 10 * MiB, 256 * KiB},
		{"exactly 2000 pieces", 500 * MiB, 256 * KiB},
		{"just over 2000 pieces", 500*MiB + 1, 512 * KiB},
		{"1 GiB", 1024 * MiB, 1 * MiB},
		{"huge clamps to ceiling", 1 << 50, 64 * MiB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectPieceLength(tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectPieceLength_PieceCountWithinTarget(t *testing.T) {
	for _, size := range []int64{256 * KiB, 10 * MiB, 77*MiB + 3, 4 * 1024 * MiB, 30 * 1024 * MiB} {
		pl, err := SelectPieceLength(size)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pl, int64(MinPieceLength))
		assert.LessOrEqual(t, pl, int64(MaxPieceLength))

		count := PieceCount(size, pl)
		assert.GreaterOrEqual(t, count, minTargetPieces, "size %d", size)
		assert.LessOrEqual(t, count, maxTargetPieces, "size %d", size)
	}
}

func TestSelectPieceLength_InvalidSize(t *testing.T) {
	_, err := SelectPieceLength(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = SelectPieceLength(-5)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestPieceLengthFromKiB(t *testing.T) {
	got, err := PieceLengthFromKiB(256)
	require.NoError(t, err)
	assert.Equal(t, int64(256*KiB), got)

	// Uncommon values are the caller's concern.
	got, err = PieceLengthFromKiB(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5*KiB), got)

	for _, kib := range []int64{0, -1, 1 << 60} {
		_, err := PieceLengthFromKiB(kib)
		assert.ErrorIs(t, err, ErrInvalidPieceLength, "kib=%d", kib)
	}
}

func TestPieceCount(t *testing.T) {
	assert.Equal(t, 6, PieceCount(6000, 1024))
	assert.Equal(t, 40, PieceCount(10*MiB, 256*KiB))
	assert.Equal(t, 1, PieceCount(1, 16*KiB))
	assert.Equal(t, 2, PieceCount(2048, 1024))
	assert.Equal(t, 0, PieceCount(0, 1024))
}
