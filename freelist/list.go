package freelist

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// List is an intrusive singly linked list of free blocks ordered by strictly ascending
// memory address. The list is threaded through the blocks' own headers, so membership
// costs no extra memory. List operations never move a block's header; growing and
// shrinking is always expressed by rewriting sizes and links in place.
//
// A List is not safe for concurrent use.
type List struct {
	head *Block
}

// Head returns the lowest-addressed free block, or nil if the list is empty. Walk the
// list with Block.Next.
func (l *List) Head() *Block {
	return l.head
}

// Len returns the number of blocks in the list.
func (l *List) Len() int {
	count := 0
	for curr := l.head; curr != nil; curr = curr.next {
		count++
	}
	return count
}

// SumFreeSize returns the total payload bytes held by the list, excluding headers.
func (l *List) SumFreeSize() int {
	size := 0
	for curr := l.head; curr != nil; curr = curr.next {
		size += curr.size
	}
	return size
}

// Insert splices block into the list at the position dictated by its address. The block
// becomes a free-list member and its next field is taken over by the list.
func (l *List) Insert(block *Block) {
	block.MarkFree()

	if l.head == nil {
		l.head = block
		return
	}

	var prev *Block
	curr := l.head
	for curr != nil && curr.addr() < block.addr() {
		prev = curr
		curr = curr.next
	}

	if prev == nil {
		l.head = block
		block.next = curr
	} else {
		prev.next = block
		block.next = curr
	}
}

// Remove unlinks block from the list. Removing a block that is not a member leaves the
// list unchanged; that case cannot arise from correct Heap usage but is tolerated rather
// than corrupting the links. The removed block is marked taken.
func (l *List) Remove(block *Block) {
	if l.head == nil {
		return
	}

	var prev *Block
	curr := l.head
	for curr != nil && curr != block {
		prev = curr
		curr = curr.next
	}

	if curr == nil {
		return
	}

	if prev == nil {
		l.head = curr.next
	} else {
		prev.next = curr.next
	}
	block.MarkTaken()
}

// Coalesce merges every pair of address-adjacent free blocks in the list. A merge can
// expose a new adjacency with the following block, so the linear scan repeats until a
// full pass performs no merges. The loop is iterative, so stack use stays constant no
// matter how long the list grows.
func (l *List) Coalesce() {
	if l.head == nil {
		return
	}

	for {
		merged := false

		prev := l.head
		for curr := prev.next; curr != nil; curr = prev.next {
			if prev.Mergeable(curr) {
				prev.size += HeaderSize + curr.size
				prev.next = curr.next
				merged = true
			} else {
				prev = curr
			}
		}

		if !merged {
			return
		}
	}
}

// BestFit returns the free block best suited to a payload of size bytes, or nil if no
// block is large enough. An exact-size match anywhere in the list wins immediately.
// Otherwise a second pass records the smallest qualifying size and a third pass returns
// the first block of that size, so ties between equal-sized candidates always resolve to
// the lowest address. The two-phase-then-locate order is deliberate: folding it into a
// single "track current best" scan changes which block wins when a larger block precedes
// the eventual minimum.
func (l *List) BestFit(size int) *Block {
	if l.head == nil {
		return nil
	}

	bestSize := math.MaxInt
	for curr := l.head; curr != nil; curr = curr.next {
		if curr.size == size {
			return curr
		} else if curr.size > size && curr.size < bestSize {
			bestSize = curr.size
		}
	}

	if bestSize == math.MaxInt {
		return nil
	}

	for curr := l.head; curr != nil; curr = curr.next {
		if curr.size == bestSize {
			return curr
		}
	}

	return nil
}

// Split carves a block with a payload of exactly size bytes off the high-address end of
// block, which must be a list member with a payload of at least size+HeaderSize+1 bytes.
// The original block stays in the list with its links untouched, shrunk by size plus one
// header; carving from the tail keeps the original header where the list is threaded
// through it. The returned block is taken and not a list member.
func (l *List) Split(block *Block, size int) *Block {
	carved := size + HeaderSize

	newBlock := (*Block)(unsafe.Add(unsafe.Pointer(block), HeaderSize+block.size-carved))
	block.size -= carved
	newBlock.size = size
	newBlock.MarkTaken()

	return newBlock
}

// Validate performs consistency checks over the whole list: strictly ascending addresses,
// every member marked free, and no two neighbouring members left mergeable. When List is
// functioning correctly it cannot return an error.
func (l *List) Validate() error {
	var prev *Block
	for curr := l.head; curr != nil; curr = curr.next {
		if !curr.IsFree() {
			return errors.Errorf("block %p is in the free list but is marked taken", curr)
		}

		if curr.size <= 0 {
			return errors.Errorf("block %p has an invalid payload size %d", curr, curr.size)
		}

		if prev != nil {
			if prev.addr() >= curr.addr() {
				return errors.Errorf("block %p appears in the list after block %p but does not have a higher address", curr, prev)
			}

			if prev.Mergeable(curr) {
				return errors.Errorf("blocks %p and %p are adjacent in memory but were not coalesced", prev, curr)
			}
		}

		prev = curr
	}

	return nil
}
