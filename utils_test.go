package slabmap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestBlockMath(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		wantBlocks int
	}{
		{"zero", 0, 0},
		{"one", 1, 1},
		{"one block", blockSize, 1},
		{"one block and a slot", blockSize + 1, 2},
		{"ten blocks", 10 * blockSize, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.wantBlocks, numBlocks(tt.n))
		})
	}
}

func TestBlockRange(t *testing.T) {
	start, end := blockRange(0, 3*blockSize)
	require.Equal(t, Key(0), start)
	require.Equal(t, Key(blockSize), end)

	start, end = blockRange(2, 2*blockSize+5)
	require.Equal(t, Key(2*blockSize), start)
	require.Equal(t, Key(2*blockSize+5), end)
}

func TestCapacityFromSize(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		sizeOfBlock := unsafe.Sizeof(slot[int]{})*uintptr(blockSize) + 4

		tests := []struct {
			name string
			size uintptr
			want int
		}{
			{"zero", 0, 0},
			{"less than one block", sizeOfBlock - 1, 0},
			{"exactly one block", sizeOfBlock, blockSize},
			{"one and a half blocks", sizeOfBlock + sizeOfBlock/2, blockSize},
			{"ten blocks", sizeOfBlock * 10, 10 * blockSize},
			{"1MB", 1024 * 1024, int(1024*1024/sizeOfBlock) * blockSize},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := CapacityFromSize[int](tt.size)
				require.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("usage with WithCapacity", func(t *testing.T) {
		sizeOfBlock := unsafe.Sizeof(slot[string]{})*uintptr(blockSize) + 4

		capacity := CapacityFromSize[string](sizeOfBlock * 4)
		require.Equal(t, 4*blockSize, capacity)

		sm := New[string](WithCapacity(capacity))
		stats := sm.Stats()
		require.Equal(t, 4*blockSize, stats.Capacity)
		require.Equal(t, 4, stats.Blocks)
		require.Equal(t, 4, stats.EmptyBlocks)
	})
}
