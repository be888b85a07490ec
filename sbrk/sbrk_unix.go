//go:build unix

package sbrk

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// OSSource obtains heap extensions from the operating system with anonymous private
// mappings. Mappings are intentionally never unmapped: the Heap owns them for the life
// of the process.
type OSSource struct{}

var _ Source = OSSource{}

func (OSSource) Extend(size int) (unsafe.Pointer, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, cerrors.Wrapf(HeapExhaustedError, "mmap of %d bytes failed: %s", size, err)
	}

	return unsafe.Pointer(&mem[0]), nil
}
