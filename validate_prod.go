//go:build !debug_heap_alloc

package heapalloc

import "unsafe"

const (
	// DebugMargin is the number of bytes of debug data placed after every payload handed
	// out by a Heap
	DebugMargin int = 0
)

// ValidateCorruptionMarker verifies that the marker written by WriteCorruptionMarker is still
// present. It returns true if the marker is intact and false otherwise. This method always
// returns true unless the debug_heap_alloc build tag is present.
func ValidateCorruptionMarker(data unsafe.Pointer, offset int) bool {
	return true
}

// WriteCorruptionMarker writes an easy-to-identify marker across DebugMargin bytes at the
// provided pointer and offset. This method no-ops unless the debug_heap_alloc build tag is
// present.
func WriteCorruptionMarker(data unsafe.Pointer, offset int) {
}

// DebugValidate will call Validate on the provided object and panics if any errors are
// returned. This method no-ops unless the debug_heap_alloc build tag is present.
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics
// if it is not. This method no-ops unless the debug_heap_alloc build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
}
