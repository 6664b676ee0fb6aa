package common

import (
	"errors"
	"math"
)

var ErrCounterOverflow = errors.New("counter overflow")

// AddUint32 returns a+b or ErrCounterOverflow when the sum does not fit. The
// first operand is returned unchanged on failure.
func AddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return a, ErrCounterOverflow
	}
	return a + b, nil
}

// AddUint64 returns a+b or ErrCounterOverflow when the sum does not fit.
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return a, ErrCounterOverflow
	}
	return a + b, nil
}

// SubUint64 returns a-b or ErrCounterOverflow when b exceeds a.
func SubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return a, ErrCounterOverflow
	}
	return a - b, nil
}

// MulUint64 returns a*b or ErrCounterOverflow when the product does not fit.
func MulUint64(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return a, ErrCounterOverflow
	}
	return a * b, nil
}
