// Package sbrk obtains raw memory from the operating system for a Heap to manage. The
// name comes from the classic break-pointer syscall the growth pattern mimics: the heap
// only ever grows, one fixed-size chunk at a time, and chunks are never handed back.
package sbrk

import (
	"unsafe"

	"github.com/pkg/errors"
)

// HeapExhaustedError is the sentinel failure returned from Source.Extend when the
// underlying provider cannot grow the heap any further.
var HeapExhaustedError error = errors.New("heap source cannot extend further")

// Source provides fixed-size extensions of raw memory.
type Source interface {
	// Extend returns a pointer to a fresh region of at least size bytes, suitable for use
	// as block storage, or an error wrapping HeapExhaustedError when no more memory can be
	// obtained. Regions stay valid for the life of the process; there is no way to return
	// one. Two regions from consecutive calls may or may not be contiguous in memory.
	Extend(size int) (unsafe.Pointer, error)
}
