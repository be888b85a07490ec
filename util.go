package heapalloc

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(NotPowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}
