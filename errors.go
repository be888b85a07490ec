package heapalloc

import "github.com/pkg/errors"

// NotPowerOfTwoError is the error returned from CheckPow2 or other methods if the number being
// tested is not a power of two
var NotPowerOfTwoError error = errors.New("number must be a power of two")

// ChunkTooSmallError is the error returned from New when the configured chunk size cannot hold
// a block header plus at least one payload byte
var ChunkTooSmallError error = errors.New("chunk size cannot fit a single block")
