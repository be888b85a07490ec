//go:build debug_heap_alloc

package heapalloc

import "unsafe"

const (
	// DebugMargin is the number of bytes of debug data placed after every payload handed
	// out by a Heap
	DebugMargin int = 16
	// corruptionMarker is a 4-byte pattern copied into the debug margin after each payload
	corruptionMarker uint32 = 0x6B3A5F91
)

// WriteCorruptionMarker writes an easy-to-identify marker across DebugMargin bytes at the
// provided pointer and offset. This method no-ops unless the debug_heap_alloc build tag is
// present.
func WriteCorruptionMarker(data unsafe.Pointer, offset int) {
	dest := unsafe.Add(data, offset)
	marginSize := DebugMargin / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < marginSize; i++ {
		*(*uint32)(dest) = corruptionMarker
		dest = unsafe.Add(dest, unsafe.Sizeof(uint32(0)))
	}
}

// ValidateCorruptionMarker verifies that the marker written by WriteCorruptionMarker is still
// present. It returns true if the marker is intact and false otherwise. This method always
// returns true unless the debug_heap_alloc build tag is present.
func ValidateCorruptionMarker(data unsafe.Pointer, offset int) bool {
	source := unsafe.Add(data, offset)
	marginSize := DebugMargin / int(unsafe.Sizeof(uint32(0)))
	for i := 0; i < marginSize; i++ {
		value := (*uint32)(source)
		if *value != corruptionMarker {
			return false
		}
		source = unsafe.Add(source, unsafe.Sizeof(uint32(0)))
	}

	return true
}

// DebugValidate will call Validate on the provided object and panics if any errors are
// returned. This method no-ops unless the debug_heap_alloc build tag is present.
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics
// if it is not. This method no-ops unless the debug_heap_alloc build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
