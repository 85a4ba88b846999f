package utils

import (
	"fmt"
	"math"
)

// MaxOffset is the largest file offset a Calvin u32 offset field can hold.
const MaxOffset = math.MaxUint32

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
// Returns an error if overflow would occur.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil
	}

	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}

	return nil
}

// SafeMultiply multiplies two uint64 values and returns the result if no overflow occurs.
// Returns 0 and an error if overflow would occur.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// RegionSize returns rows*rowWidth, rejecting products that cannot be
// addressed by a u32 offset.
func RegionSize(rows, rowWidth uint64) (uint64, error) {
	size, err := SafeMultiply(rows, rowWidth)
	if err != nil {
		return 0, err
	}
	if size > MaxOffset {
		return 0, fmt.Errorf("data region of %d rows x %d bytes exceeds 4 GiB", rows, rowWidth)
	}
	return size, nil
}

// CheckOffset verifies that an absolute file position fits a u32 offset field.
func CheckOffset(pos uint64) error {
	if pos > MaxOffset {
		return fmt.Errorf("file offset %d exceeds u32 range", pos)
	}
	return nil
}

// Decode-time limits guarding against corrupt length prefixes.
const (
	// MaxStringSize limits a single string8/string16 field to 16MB.
	MaxStringSize = 16 * 1024 * 1024

	// MaxListCount limits parameter, column, parent and data set counts.
	MaxListCount = 1 << 24
)
