package freelist

import (
	"unsafe"
)

// Block is the in-band header written at the start of every block, immediately before the
// payload bytes handed to callers. The same sixteen bytes serve as allocation metadata while
// the block is live and as the free-list link while the block is free: a free block's next
// field holds its list successor, while a taken block points next at itself. Blocks are views
// over raw heap memory and are never allocated on the Go heap.
type Block struct {
	size int
	next *Block
}

// HeaderSize is the number of bytes occupied by a Block header in heap memory. Every block,
// free or live, carries exactly one header directly before its payload.
const HeaderSize = int(unsafe.Sizeof(Block{}))

// NewBlock overlays a Block header on the memory at mem and records a payload of size bytes.
// The memory must extend at least HeaderSize+size bytes past mem. The block starts out taken
// and unlinked; Insert it to make it available.
func NewBlock(mem unsafe.Pointer, size int) *Block {
	b := (*Block)(mem)
	b.size = size
	b.MarkTaken()
	return b
}

// FromPayload recovers the Block whose payload starts at p. This is the only place the
// payload-to-header offset arithmetic lives; p must have been returned by Block.Payload.
func FromPayload(p unsafe.Pointer) *Block {
	return (*Block)(unsafe.Add(p, -HeaderSize))
}

// Payload returns a pointer to the first usable byte of the block, directly after the header.
func (b *Block) Payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), HeaderSize)
}

// Size returns the usable payload byte count, excluding the header.
func (b *Block) Size() int {
	return b.size
}

// Next returns the block's free-list successor. It is meaningful only while the block is a
// member of a List.
func (b *Block) Next() *Block {
	return b.next
}

func (b *Block) MarkFree() {
	b.next = nil
}

func (b *Block) MarkTaken() {
	b.next = b
}

func (b *Block) IsFree() bool {
	return b.next != b
}

func (b *Block) addr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

// end returns the address one past the block's last payload byte.
func (b *Block) end() uintptr {
	return b.addr() + uintptr(HeaderSize+b.size)
}

// Mergeable reports whether other starts exactly where b ends, so that absorbing other's
// header and payload into b would produce one contiguous block.
func (b *Block) Mergeable(other *Block) bool {
	return b.end() == other.addr()
}
