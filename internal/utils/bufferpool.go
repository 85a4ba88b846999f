// Package utils provides utility functions shared by the Calvin packages.
package utils

import "sync"

var bufferPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, 0, 4096)
	},
}

// GetBuffer returns a byte slice from the pool.
// The contents are unspecified; use GetZeroBuffer when zero bytes are required.
func GetBuffer(size int) []byte {
	buf := bufferPool.Get().([]byte)
	if cap(buf) < size {
		return make([]byte, size, size*2) // Increase capacity.
	}
	return buf[:size]
}

// GetZeroBuffer returns a pooled byte slice of the given size with every byte cleared.
func GetZeroBuffer(size int) []byte {
	buf := GetBuffer(size)
	clear(buf)
	return buf
}

// ReleaseBuffer returns a buffer to the pool.
func ReleaseBuffer(buf []byte) {
	//nolint:staticcheck // SA6002: slice descriptor copy is acceptable for sync.Pool
	bufferPool.Put(buf[:0])
}
