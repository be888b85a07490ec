//go:build !unix

package sbrk

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
)

// OSSource obtains heap extensions from the operating system. On platforms without an
// anonymous-mmap implementation every Extend call fails.
type OSSource struct{}

var _ Source = OSSource{}

func (OSSource) Extend(size int) (unsafe.Pointer, error) {
	return nil, cerrors.Wrap(HeapExhaustedError, "raw memory mappings are not supported on this platform")
}
