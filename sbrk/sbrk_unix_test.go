//go:build unix

package sbrk_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/memforge/heapalloc/sbrk"
)

func TestOSSourceExtend(t *testing.T) {
	var source sbrk.OSSource

	mem, err := source.Extend(4096)
	require.NoError(t, err)
	require.NotNil(t, mem)

	// The whole extent must be writable and readable.
	region := unsafe.Slice((*byte)(mem), 4096)
	region[0] = 0x42
	region[4095] = 0x24
	require.Equal(t, byte(0x42), region[0])
	require.Equal(t, byte(0x24), region[4095])
}

func TestOSSourceExtendsAreDistinct(t *testing.T) {
	var source sbrk.OSSource

	first, err := source.Extend(4096)
	require.NoError(t, err)
	second, err := source.Extend(4096)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
