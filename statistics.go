package heapalloc

import "math"

// Statistics is a fast-to-compute summary of a Heap's memory usage.
type Statistics struct {
	// ExtensionCount is the number of chunks obtained from the heap source
	ExtensionCount int
	// ExtensionBytes is the total number of bytes obtained from the heap source
	ExtensionBytes int
	// AllocationCount is the number of payloads currently handed out to callers
	AllocationCount int
	// AllocationBytes is the total payload bytes currently handed out to callers
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.ExtensionCount = 0
	s.ExtensionBytes = 0
	s.AllocationCount = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.ExtensionCount += other.ExtensionCount
	s.ExtensionBytes += other.ExtensionBytes
	s.AllocationCount += other.AllocationCount
	s.AllocationBytes += other.AllocationBytes
}

// DetailedStatistics extends Statistics with free-list detail that requires a full
// walk of the heap to compute.
type DetailedStatistics struct {
	Statistics
	// FreeRangeCount is the number of entries in the free list
	FreeRangeCount int
	// AllocationSizeMin is the smallest live payload, or math.MaxInt when none are live
	AllocationSizeMin int
	// AllocationSizeMax is the largest live payload, or 0 when none are live
	AllocationSizeMax int
	// FreeRangeSizeMin is the smallest free block payload, or math.MaxInt when the free list is empty
	FreeRangeSizeMin int
	// FreeRangeSizeMax is the largest free block payload, or 0 when the free list is empty
	FreeRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRangeCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeRangeSizeMin = math.MaxInt
	s.FreeRangeSizeMax = 0
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeRangeCount++

	if size < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = size
	}

	if size > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRangeCount += other.FreeRangeCount

	if other.FreeRangeSizeMin < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = other.FreeRangeSizeMin
	}

	if other.FreeRangeSizeMax > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = other.FreeRangeSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}
