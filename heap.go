// Package heapalloc is a user-space dynamic-memory allocator. A Heap manages raw memory
// obtained from an sbrk.Source in fixed-size chunks and serves arbitrary-size allocations
// out of it with a best-fit, address-ordered free list: freed blocks re-enter the list in
// address order and adjacent blocks are coalesced, oversized blocks are split from the
// high-address end, and every block carries a sixteen-byte in-band header directly before
// its payload.
//
// A Heap hands out raw pointers. The caller owns a payload until it passes it back to
// Free; the allocator performs no garbage collection and never returns memory to the
// operating system. Freeing a pointer twice, freeing a pointer the Heap did not hand out,
// or writing past a payload's end corrupts the heap in undefined ways, exactly as with a
// conventional malloc.
package heapalloc

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/memforge/heapalloc/freelist"
	"github.com/memforge/heapalloc/sbrk"
)

// DefaultChunkSize is the heap extension size used when New is not given WithChunkSize.
const DefaultChunkSize = 2048

// Heap is a single growable heap. Heaps are independent of each other, so tests and
// subsystems can each construct their own. A Heap is not safe for concurrent use; callers
// that share one across goroutines must serialize access themselves.
type Heap struct {
	source    sbrk.Source
	chunkSize int

	free   freelist.List
	status Status
	live   *swiss.Map[uintptr, int]

	extensionCount int
	extensionBytes int
}

type Option func(*Heap)

// WithChunkSize overrides DefaultChunkSize. The size must be a power of two large enough
// to hold a block header plus at least one payload byte.
func WithChunkSize(size int) Option {
	return func(h *Heap) {
		h.chunkSize = size
	}
}

// New creates an empty Heap served by the provided source. No memory is obtained until
// the first allocation needs it.
func New(source sbrk.Source, options ...Option) (*Heap, error) {
	h := &Heap{
		source:    source,
		chunkSize: DefaultChunkSize,
		live:      swiss.NewMap[uintptr, int](42),
	}

	for _, option := range options {
		option(h)
	}

	err := CheckPow2(h.chunkSize, "chunk size")
	if err != nil {
		return nil, err
	}

	if h.chunkSize <= freelist.HeaderSize+DebugMargin {
		return nil, cerrors.Wrapf(ChunkTooSmallError, "chunk size is %d but a block needs %d header bytes", h.chunkSize, freelist.HeaderSize)
	}

	return h, nil
}

// Status returns the outcome of the most recent operation on this Heap. It is reset at
// the start of every Alloc, Calloc, Realloc, and Free call, so after a nil return it
// carries the reason for that specific failure.
func (h *Heap) Status() Status {
	return h.status
}

// Alloc returns a pointer to size usable bytes, or nil on failure; Status tells the two
// cases apart. Alloc(0) performs no allocation and returns nil with StatusNoError.
//
// The smallest free block that fits serves the request, with an exact-size match taken
// unsplit. A larger block is split from its high-address end, unless the remainder would
// be too small to ever stand alone again, in which case the whole block is handed out and
// the excess bytes ride along as internal fragmentation. When no block fits, the heap
// grows by one chunk and the search runs once more.
func (h *Heap) Alloc(size int) unsafe.Pointer {
	h.status = StatusNoError

	padded := size + DebugMargin
	if padded > h.chunkSize-freelist.HeaderSize {
		h.status = StatusRequestTooLarge
		return nil
	}

	if size == 0 {
		return nil
	}

	block := h.free.BestFit(padded)
	if block == nil {
		mem, err := h.source.Extend(h.chunkSize)
		if err != nil {
			h.status = StatusOutOfMemory
			return nil
		}
		h.extensionCount++
		h.extensionBytes += h.chunkSize

		h.free.Insert(freelist.NewBlock(mem, h.chunkSize-freelist.HeaderSize))
		h.free.Coalesce()

		block = h.free.BestFit(padded)
		if block == nil || block.Size() < padded {
			h.status = StatusOutOfMemory
			return nil
		}
	}

	if block.Size() == padded {
		h.free.Remove(block)
	} else if block.Size() >= padded+freelist.HeaderSize+1 {
		block = h.free.Split(block, padded)
	} else {
		// Remainder too small for a standalone block; hand out the whole thing.
		h.free.Remove(block)
	}

	return h.commit(block, size)
}

func (h *Heap) commit(block *freelist.Block, requested int) unsafe.Pointer {
	payload := block.Payload()
	h.live.Put(uintptr(payload), requested)
	WriteCorruptionMarker(payload, requested)
	DebugValidate(h)
	return payload
}

// Calloc returns a zero-filled allocation of count*size bytes, or nil on failure. The
// product is deliberately unchecked; guarding against overflow is the caller's
// responsibility.
func (h *Heap) Calloc(count, size int) unsafe.Pointer {
	h.status = StatusNoError

	total := count * size
	ptr := h.Alloc(total)
	if ptr == nil {
		return nil
	}

	payload := unsafe.Slice((*byte)(ptr), total)
	for i := range payload {
		payload[i] = 0
	}

	return ptr
}

// Realloc resizes the allocation at ptr to size bytes by allocating a fresh block,
// copying the lesser of the old and new sizes, and freeing the old block; the returned
// pointer is always a new location. Realloc(nil, size) behaves as Alloc(size) and
// Realloc(ptr, 0) frees ptr and returns nil. If the new allocation fails, nil is returned
// and the original block is untouched and still owned by the caller.
func (h *Heap) Realloc(ptr unsafe.Pointer, size int) unsafe.Pointer {
	h.status = StatusNoError

	if ptr == nil {
		return h.Alloc(size)
	}

	if size == 0 {
		h.Free(ptr)
		return nil
	}

	newPtr := h.Alloc(size)
	if newPtr == nil {
		return nil
	}

	// The old block's header records its full payload span, which may exceed what the
	// caller originally asked for if the block was handed out whole.
	count := freelist.FromPayload(ptr).Size() - DebugMargin
	if size < count {
		count = size
	}
	copy(unsafe.Slice((*byte)(newPtr), count), unsafe.Slice((*byte)(ptr), count))

	h.Free(ptr)
	return newPtr
}

// Free returns the allocation at ptr to the heap. The block re-enters the free list at
// its address-ordered position and the whole list is coalesced to a fixed point, so no
// two adjacent free blocks remain unmerged. Free(nil) is a no-op.
func (h *Heap) Free(ptr unsafe.Pointer) {
	h.status = StatusNoError

	if ptr == nil {
		return
	}

	block := freelist.FromPayload(ptr)
	h.live.Delete(uintptr(ptr))
	h.free.Insert(block)
	h.free.Coalesce()
	DebugValidate(h)
}

// AllocationCount returns the number of payloads currently handed out to callers.
func (h *Heap) AllocationCount() int {
	return h.live.Count()
}

// FreeRegionsCount returns the number of entries in the free list.
func (h *Heap) FreeRegionsCount() int {
	return h.free.Len()
}

// SumFreeSize returns the total payload bytes sitting in the free list.
func (h *Heap) SumFreeSize() int {
	return h.free.SumFreeSize()
}

// HeapBytes returns the total bytes obtained from the heap source so far.
func (h *Heap) HeapBytes() int {
	return h.extensionBytes
}

// ChunkSize returns the heap extension size this Heap grows by.
func (h *Heap) ChunkSize() int {
	return h.chunkSize
}

// IsEmpty returns true if this Heap has no live allocations.
func (h *Heap) IsEmpty() bool {
	return h.live.Count() == 0
}

// Validate performs internal consistency checks: free-list address ordering, absence of
// uncoalesced neighbours, live blocks not doubling as free-list members, and byte
// conservation (free payloads + live payloads + one header per block must account for
// every byte obtained from the source). When the allocator is functioning correctly it
// cannot return an error.
func (h *Heap) Validate() error {
	err := h.free.Validate()
	if err != nil {
		return err
	}

	headerBytes := 0
	payloadBytes := 0
	for block := h.free.Head(); block != nil; block = block.Next() {
		headerBytes += freelist.HeaderSize
		payloadBytes += block.Size()
	}

	var invalid error
	h.live.Iter(func(payload uintptr, requested int) bool {
		block := freelist.FromPayload(unsafe.Pointer(payload))
		if block.IsFree() {
			invalid = errors.Errorf("allocation at %#x is live but its block is marked free", payload)
			return true
		}

		if block.Size() < requested+DebugMargin {
			invalid = errors.Errorf("allocation at %#x was requested with %d bytes but its block only spans %d", payload, requested, block.Size())
			return true
		}

		headerBytes += freelist.HeaderSize
		payloadBytes += block.Size()
		return false
	})
	if invalid != nil {
		return invalid
	}

	if headerBytes+payloadBytes != h.extensionBytes {
		return errors.Errorf("conservation failure: %d payload bytes and %d header bytes do not account for the %d bytes obtained", payloadBytes, headerBytes, h.extensionBytes)
	}

	return nil
}

// CheckCorruption returns nil if the debug margin after every live payload is intact.
// Margins are only written when the module is built with the debug_heap_alloc tag; without
// it this method cannot fail.
func (h *Heap) CheckCorruption() error {
	var corrupt error
	h.live.Iter(func(payload uintptr, requested int) bool {
		if !ValidateCorruptionMarker(unsafe.Pointer(payload), requested) {
			corrupt = errors.Errorf("allocation at %#x has a damaged corruption marker", payload)
			return true
		}
		return false
	})
	return corrupt
}

// AddStatistics sums this heap's usage counters into the provided Statistics object.
func (h *Heap) AddStatistics(stats *Statistics) {
	stats.ExtensionCount += h.extensionCount
	stats.ExtensionBytes += h.extensionBytes
	stats.AllocationCount += h.live.Count()
	h.live.Iter(func(_ uintptr, requested int) bool {
		stats.AllocationBytes += requested
		return false
	})
}

// AddDetailedStatistics sums this heap's usage counters and free-list detail into the
// provided DetailedStatistics object.
func (h *Heap) AddDetailedStatistics(stats *DetailedStatistics) {
	stats.ExtensionCount += h.extensionCount
	stats.ExtensionBytes += h.extensionBytes

	h.live.Iter(func(_ uintptr, requested int) bool {
		stats.AddAllocation(requested)
		return false
	})

	for block := h.free.Head(); block != nil; block = block.Next() {
		stats.AddFreeRange(block.Size())
	}
}

type blockInfo struct {
	payload unsafe.Pointer
	size    int
	free    bool
}

// VisitAllBlocks calls visit once per block, free and live alike, in ascending address
// order. Live blocks report the caller-requested size; free blocks report their full
// payload span. The walk stops at the first error, which is returned.
func (h *Heap) VisitAllBlocks(visit func(payload unsafe.Pointer, size int, free bool) error) error {
	blocks := make([]blockInfo, 0, h.free.Len()+h.live.Count())

	for block := h.free.Head(); block != nil; block = block.Next() {
		blocks = append(blocks, blockInfo{payload: block.Payload(), size: block.Size(), free: true})
	}
	h.live.Iter(func(payload uintptr, requested int) bool {
		blocks = append(blocks, blockInfo{payload: unsafe.Pointer(payload), size: requested, free: false})
		return false
	})

	slices.SortFunc(blocks, func(a, b blockInfo) bool {
		return uintptr(a.payload) < uintptr(b.payload)
	})

	for _, block := range blocks {
		err := visit(block.payload, block.size, block.free)
		if err != nil {
			return err
		}
	}

	return nil
}

// DebugLogAllAllocations walks the live allocations in address order and calls logFunc
// for each, for diagnostic dumps of a leaking heap.
func (h *Heap) DebugLogAllAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, payload unsafe.Pointer, size int)) {
	_ = h.VisitAllBlocks(func(payload unsafe.Pointer, size int, free bool) error {
		if !free {
			logFunc(logger, payload, size)
		}
		return nil
	})
}
