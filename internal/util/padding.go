package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
const CacheLineSize = 64

// CacheLinePad separates groups of hot fields into distinct cache lines.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// Counter is an atomic int64 padded to exactly one cache line, so counters
// bumped by different goroutines do not share a line.
type Counter struct {
	atomic.Int64
	_ [CacheLineSize - 8]byte
}

// Inc adds one to the counter.
func (c *Counter) Inc() { c.Add(1) }

var _ [CacheLineSize - int(unsafe.Sizeof(Counter{}))]byte
