package heapalloc

import (
	"unsafe"

	"github.com/memforge/heapalloc/sbrk"
)

// An ArenaSource serves heap extensions from ordinary Go byte slices and refuses to grow
// past a fixed number of extensions, simulating an operating system running out of
// memory. It keeps every slice it hands out reachable so the raw pointers into them stay
// valid for the life of the source.
type ArenaSource struct {
	limit  int
	chunks [][]byte
}

// NewArenaSource returns a source that satisfies at most limit Extend calls; a negative
// limit means unbounded.
func NewArenaSource(limit int) *ArenaSource {
	return &ArenaSource{limit: limit}
}

func (s *ArenaSource) Extend(size int) (unsafe.Pointer, error) {
	if s.limit >= 0 && len(s.chunks) >= s.limit {
		return nil, sbrk.HeapExhaustedError
	}

	mem := make([]byte, size)
	s.chunks = append(s.chunks, mem)
	return unsafe.Pointer(&mem[0]), nil
}

// Extensions returns the number of Extend calls served so far.
func (s *ArenaSource) Extensions() int {
	return len(s.chunks)
}
