// Package util contains internal helpers shared by the cache and policies.
//
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
const CacheLineSize = 64

// CacheLinePad separates hot fields into distinct cache lines.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// PaddedAtomicUint64 is an atomic uint64 padded to exactly one cache line.
// The cache clock, the FIFO cursor and the hit/miss counters are bumped by
// every goroutine touching the cache, so each gets its own line.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

var _ [CacheLineSize - int(unsafe.Sizeof(PaddedAtomicUint64{}))]byte
