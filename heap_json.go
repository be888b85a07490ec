package heapalloc

import (
	"fmt"
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// HeapJsonData populates a json object with this heap's usage counters.
func (h *Heap) HeapJsonData(json jwriter.ObjectState) {
	json.Name("ChunkSize").Int(h.chunkSize)
	json.Name("TotalBytes").Int(h.extensionBytes)
	json.Name("Extensions").Int(h.extensionCount)
	json.Name("Allocations").Int(h.live.Count())
	json.Name("FreeRegions").Int(h.free.Len())
	json.Name("FreeBytes").Int(h.free.SumFreeSize())
}

// BuildStatsString returns a json document describing the heap's current state. When
// detailed is true it includes one entry per block, free and live alike, in address
// order.
func (h *Heap) BuildStatsString(detailed bool) string {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	h.HeapJsonData(obj)

	if detailed {
		arrayState := obj.Name("Blocks").Array()

		_ = h.VisitAllBlocks(func(payload unsafe.Pointer, size int, free bool) error {
			blockObj := arrayState.Object()
			blockObj.Name("Address").String(fmt.Sprintf("%p", payload))
			blockObj.Name("Size").Int(size)
			if free {
				blockObj.Name("Type").String("Free")
			} else {
				blockObj.Name("Type").String("Allocated")
			}
			blockObj.End()
			return nil
		})

		arrayState.End()
	}

	obj.End()
	return string(writer.Bytes())
}
