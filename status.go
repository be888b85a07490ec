package heapalloc

// Status is the outcome of the most recent Heap operation. It is overwritten at the start
// of every Alloc, Calloc, Realloc, and Free call and can be read through Heap.Status after
// a nil return to learn why the operation failed.
type Status uint32

const (
	// StatusNoError indicates that the last operation succeeded, or was a documented no-op
	// such as a zero-size allocation
	StatusNoError Status = iota
	// StatusRequestTooLarge indicates that the requested payload exceeds what a single heap
	// extension can ever satisfy. Retrying the same request on the same heap cannot succeed.
	StatusRequestTooLarge
	// StatusOutOfMemory indicates that the heap source could not extend the heap further, or
	// that no suitable free block existed even after an extension was obtained. The request
	// may succeed later if memory is freed.
	StatusOutOfMemory
)

var statusMapping = map[Status]string{
	StatusNoError:         "NoError",
	StatusRequestTooLarge: "RequestTooLarge",
	StatusOutOfMemory:     "OutOfMemory",
}

func (s Status) String() string {
	return statusMapping[s]
}
